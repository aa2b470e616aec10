package callback

import (
	"go.uber.org/zap"

	"github.com/hdlbridge/gpi/backend"
	"github.com/hdlbridge/gpi/dispatch"
	"github.com/hdlbridge/gpi/errors"
	"github.com/hdlbridge/gpi/object"
)

// State is the lifecycle position of a callback handle. A handle is in
// exactly one state; the terminal state is always Destroyed.
type State uint8

const (
	// Unarmed: created but not yet registered with the backend.
	Unarmed State = iota
	// Armed: registered, backend reference live.
	Armed
	// RemovePending: logically removed; a stray fire squashes itself
	// and completes destruction.
	RemovePending
	// FiredQueued: fired while a dispatch was in progress, awaiting
	// its turn in the pending queue.
	FiredQueued
	// Destroyed: reclaimed. The handle must no longer be referenced.
	Destroyed
)

func (s State) String() string {
	switch s {
	case Unarmed:
		return "unarmed"
	case Armed:
		return "armed"
	case RemovePending:
		return "remove-pending"
	case FiredQueued:
		return "fired-queued"
	case Destroyed:
		return "destroyed"
	default:
		return "invalid"
	}
}

// Kind is the trigger condition of a callback.
type Kind uint8

const (
	Timed Kind = iota
	ValueChange
	ReadOnly
	ReadWrite
	NextTime
	StartOfSim
	EndOfSim
)

func (k Kind) String() string {
	switch k {
	case Timed:
		return "timed"
	case ValueChange:
		return "value-change"
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	case NextTime:
		return "next-time"
	case StartOfSim:
		return "start-of-sim"
	case EndOfSim:
		return "end-of-sim"
	default:
		return "invalid"
	}
}

// Edge filters value-change fires before the user function is invoked.
type Edge uint8

const (
	AnyChange Edge = iota
	Rising
	Falling
)

// matches applies the edge predicate to the watched signal's current
// bit-string reading.
func (e Edge) matches(binstr string) bool {
	switch e {
	case Rising:
		return binstr == "1"
	case Falling:
		return binstr == "0"
	default:
		return true
	}
}

// Func is the registered user function, invoked with its context on fire.
type Func func(ctx any)

// Handle represents one registration with the backend scheduler. Each
// registration gets a fresh handle; there is no reuse. The handle owns
// its own destruction: it reclaims itself once it determines no further
// firing will occur, because the backend may fire into code paths that
// have already returned.
type Handle struct {
	kind Kind
	fn   Func
	ctx  any

	edge    Edge
	watched *object.Handle

	be   backend.Backend
	disp *dispatch.Dispatcher
	log  *zap.Logger

	ref     backend.CallbackRef
	token   uint64
	removed bool
	state   State
}

// register arms a freshly built handle via the given backend primitive.
func register(h *Handle, arm func(user uint64) (backend.CallbackRef, error)) (*Handle, error) {
	h.token = h.disp.Register(h)
	ref, err := arm(h.token)
	if err != nil {
		code, msg := h.be.Diag()
		h.log.Error("backend rejected callback registration",
			zap.String("kind", h.kind.String()),
			zap.Int("diag_code", code),
			zap.String("diag_msg", msg),
			zap.Error(err),
		)
		h.disp.Release(h.token)
		h.state = Destroyed
		return nil, errors.BackendReject(errors.PhaseArm, h.kind.String()+" registration", code, msg)
	}
	h.ref = ref
	h.state = Armed
	return h, nil
}

func newHandle(kind Kind, be backend.Backend, disp *dispatch.Dispatcher, log *zap.Logger, fn Func, ctx any) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{kind: kind, be: be, disp: disp, log: log, fn: fn, ctx: ctx, state: Unarmed}
}

// NewTimed registers a fixed-delay timer callback.
func NewTimed(be backend.Backend, disp *dispatch.Dispatcher, log *zap.Logger, delay uint64, fn Func, ctx any) (*Handle, error) {
	h := newHandle(Timed, be, disp, log, fn, ctx)
	return register(h, func(user uint64) (backend.CallbackRef, error) {
		return be.RegisterTimed(delay, user)
	})
}

// NewValueChange registers an edge-filtered value-change callback on the
// watched signal.
func NewValueChange(be backend.Backend, disp *dispatch.Dispatcher, log *zap.Logger, watched *object.Handle, edge Edge, fn Func, ctx any) (*Handle, error) {
	h := newHandle(ValueChange, be, disp, log, fn, ctx)
	h.edge = edge
	h.watched = watched
	return register(h, func(user uint64) (backend.CallbackRef, error) {
		return be.RegisterValueChange(watched.Ref(), user)
	})
}

// NewReadOnly registers a callback for the read-only sync point.
func NewReadOnly(be backend.Backend, disp *dispatch.Dispatcher, log *zap.Logger, fn Func, ctx any) (*Handle, error) {
	h := newHandle(ReadOnly, be, disp, log, fn, ctx)
	return register(h, be.RegisterReadOnly)
}

// NewReadWrite registers a callback for the read-write sync point.
func NewReadWrite(be backend.Backend, disp *dispatch.Dispatcher, log *zap.Logger, fn Func, ctx any) (*Handle, error) {
	h := newHandle(ReadWrite, be, disp, log, fn, ctx)
	return register(h, be.RegisterReadWrite)
}

// NewNextTime registers a callback for the next timestep boundary.
func NewNextTime(be backend.Backend, disp *dispatch.Dispatcher, log *zap.Logger, fn Func, ctx any) (*Handle, error) {
	h := newHandle(NextTime, be, disp, log, fn, ctx)
	return register(h, be.RegisterNextTime)
}

// NewStartOfSim registers a start-of-simulation callback.
func NewStartOfSim(be backend.Backend, disp *dispatch.Dispatcher, log *zap.Logger, fn Func, ctx any) (*Handle, error) {
	h := newHandle(StartOfSim, be, disp, log, fn, ctx)
	return register(h, be.RegisterStartOfSim)
}

// NewEndOfSim registers an end-of-simulation callback.
func NewEndOfSim(be backend.Backend, disp *dispatch.Dispatcher, log *zap.Logger, fn Func, ctx any) (*Handle, error) {
	h := newHandle(EndOfSim, be, disp, log, fn, ctx)
	return register(h, be.RegisterEndOfSim)
}

// Kind returns the handle's trigger kind.
func (h *Handle) Kind() Kind {
	return h.kind
}

// State returns the handle's lifecycle state.
func (h *Handle) State() State {
	return h.state
}

// Info returns the registered function and context without firing.
func (h *Handle) Info() (Func, any) {
	return h.fn, h.ctx
}

// Deferred implements dispatch.Callback.
func (h *Handle) Deferred() {
	h.state = FiredQueued
}

// Run implements dispatch.Callback: the firing logic invoked by the
// dispatcher when the backend fires this registration.
func (h *Handle) Run() {
	if h.state == Destroyed {
		return
	}
	if h.removed {
		// Stray fire racing an earlier removal. Squash and complete
		// the deferred destruction.
		h.cancelBackend()
		h.destroy()
		return
	}

	if h.kind == ValueChange {
		if !h.edge.matches(h.watched.BinStr()) {
			// Filtered out; the registration stays armed.
			h.state = Armed
			return
		}
		// One-shot semantics over the backend's recurring primitive.
		if h.be.Policy() == backend.DeferredDelete {
			// This backend cannot tolerate inline deletion of a
			// recurring registration; flag for the next fire.
			h.removed = true
			h.state = RemovePending
			h.fn(h.ctx)
			return
		}
		h.cancelBackend()
	} else {
		// Non-recurring registrations are consumed by firing.
		h.ref = 0
	}

	if h.kind == EndOfSim {
		// End-of-run mode must be active before user code runs so fires
		// racing teardown are squashed instead of treated as corruption.
		h.disp.MarkEnded()
	}

	fn, ctx := h.fn, h.ctx
	fn(ctx)
	h.destroy()
}

// Remove requests removal. Takes effect either immediately (handle
// destroyed now) or on the next squashed fire; either way the caller
// must not touch the handle afterwards. Returns 0 on success, non-zero
// on failure, and is idempotent.
func (h *Handle) Remove() int {
	switch h.state {
	case Destroyed, RemovePending:
		return 0
	case FiredQueued:
		// Sitting in the re-entrancy queue; excise by identity so it
		// is never fired as a zombie.
		h.disp.Excise(h)
		h.cancelBackend()
		h.destroy()
		return 0
	case Unarmed:
		h.destroy()
		return 0
	}

	if h.ref != 0 {
		if err := h.be.Cancel(h.ref); err != nil {
			code, msg := h.be.Diag()
			h.log.Error("backend rejected callback cancellation",
				zap.String("kind", h.kind.String()),
				zap.Int("diag_code", code),
				zap.String("diag_msg", msg),
			)
			// Defer destruction to the stray fire, which will
			// observe the removed flag, squash itself, and retry
			// the backend cancellation.
			h.removed = true
			h.state = RemovePending
			return 0
		}
		h.ref = 0
	}
	h.destroy()
	return 0
}

// cancelBackend drops a still-live backend registration, ignoring
// rejections for registrations the backend already consumed.
func (h *Handle) cancelBackend() {
	if h.ref == 0 {
		return
	}
	if err := h.be.Cancel(h.ref); err != nil {
		code, msg := h.be.Diag()
		h.log.Debug("cancellation of consumed registration rejected",
			zap.String("kind", h.kind.String()),
			zap.Int("diag_code", code),
			zap.String("diag_msg", msg),
		)
	}
	h.ref = 0
}

// destroy is the single reclamation path. It releases the dispatcher
// token so stale fires can no longer resolve this handle.
func (h *Handle) destroy() {
	if h.state == Destroyed {
		return
	}
	if h.token != 0 {
		h.disp.Release(h.token)
		h.token = 0
	}
	h.watched = nil
	h.fn = nil
	h.ctx = nil
	h.state = Destroyed
}
