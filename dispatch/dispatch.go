package dispatch

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Callback is the dispatcher's view of a callback handle.
type Callback interface {
	// Run executes the callback's firing logic.
	Run()

	// Deferred notifies the handle that its fire was queued behind an
	// in-progress dispatch.
	Deferred()
}

// FatalFunc reports a corrupted-state condition. The default logs at the
// highest severity and terminates the process; continuing would risk
// invoking arbitrary state as a callback.
type FatalFunc func(msg string)

// Dispatcher is the single re-entry point the backend invokes for every
// fired callback. Fires that arrive while a dispatch is already running
// are appended to a pending queue and drained strictly in FIFO order
// after the in-progress dispatch completes.
type Dispatcher struct {
	reacting bool
	pending  []Callback

	entries  []Callback
	freeList []uint64

	ended bool

	log    *zap.Logger
	fatalf FatalFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithFatal replaces the process-terminating fatal hook. The replacement
// must not return control to the call site.
func WithFatal(f FatalFunc) Option {
	return func(d *Dispatcher) { d.fatalf = f }
}

// New creates an idle dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.fatalf == nil {
		d.fatalf = d.defaultFatal
	}
	return d
}

func (d *Dispatcher) defaultFatal(msg string) {
	d.log.Error(msg)
	fmt.Fprintln(os.Stderr, "gpi: "+msg)
	os.Exit(1)
}

// Register stores a callback and returns the opaque token passed to the
// backend as user data. Token 0 is never issued.
func (d *Dispatcher) Register(cb Callback) uint64 {
	if n := len(d.freeList); n > 0 {
		token := d.freeList[n-1]
		d.freeList = d.freeList[:n-1]
		d.entries[token-1] = cb
		return token
	}
	d.entries = append(d.entries, cb)
	return uint64(len(d.entries))
}

// Release invalidates a token. Stray fires carrying it can no longer
// resolve to the callback.
func (d *Dispatcher) Release(token uint64) {
	if token == 0 || int(token) > len(d.entries) {
		return
	}
	d.entries[token-1] = nil
	d.freeList = append(d.freeList, token)
}

func (d *Dispatcher) resolve(token uint64) Callback {
	if token == 0 || int(token) > len(d.entries) {
		return nil
	}
	return d.entries[token-1]
}

// MarkEnded records that the simulation is ending. Fires that cannot be
// resolved after this point are squashed instead of treated as corruption.
func (d *Dispatcher) MarkEnded() {
	d.ended = true
}

// Entry is the function installed into the backend scheduler. It resolves
// the fired callback from its opaque token and either runs it or, when a
// dispatch is already in progress, defers it to the pending queue.
func (d *Dispatcher) Entry(token uint64) {
	cb := d.resolve(token)
	if cb == nil {
		if d.ended {
			// Late fire racing end-of-run teardown. Tolerated.
			d.log.Warn("squashed callback fire after end of simulation",
				zap.Uint64("token", token))
			return
		}
		d.fatalf(fmt.Sprintf("callback fired with corrupt user data (token %d)", token))
		return
	}

	if d.reacting {
		cb.Deferred()
		d.pending = append(d.pending, cb)
		return
	}

	d.reacting = true
	cb.Run()
	for len(d.pending) > 0 {
		next := d.pending[0]
		d.pending = d.pending[1:]
		next.Run()
	}
	d.reacting = false
}

// Excise removes a queued callback by identity. Used when a callback is
// removed while sitting in the pending queue so it is never fired as a
// zombie.
func (d *Dispatcher) Excise(cb Callback) bool {
	for i, queued := range d.pending {
		if queued == cb {
			d.pending = append(d.pending[:i], d.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Reacting reports whether a dispatch is currently in progress.
func (d *Dispatcher) Reacting() bool {
	return d.reacting
}
