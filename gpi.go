package gpi

import (
	"go.uber.org/zap"

	"github.com/hdlbridge/gpi/backend"
	"github.com/hdlbridge/gpi/callback"
	"github.com/hdlbridge/gpi/clock"
	"github.com/hdlbridge/gpi/dispatch"
	"github.com/hdlbridge/gpi/errors"
	"github.com/hdlbridge/gpi/logging"
	"github.com/hdlbridge/gpi/object"
)

// GPI binds one backend to the dispatcher and exposes the registration
// and object-lookup surface consumed by the embedding layer.
type GPI struct {
	be   backend.Backend
	disp *dispatch.Dispatcher
	logb *logging.Bridge
	log  *zap.Logger
}

// Option configures a GPI.
type Option func(*options)

type options struct {
	log    *zap.Logger
	fatalf dispatch.FatalFunc
}

// WithLogger sets the logger used by the GPI and its dispatcher.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithFatal replaces the process-terminating hook used on corrupted
// callback state.
func WithFatal(f dispatch.FatalFunc) Option {
	return func(o *options) { o.fatalf = f }
}

// New wires a backend to a fresh dispatcher and installs the dispatch
// entry function into the backend scheduler.
func New(be backend.Backend, opts ...Option) *GPI {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	dispOpts := []dispatch.Option{dispatch.WithLogger(o.log)}
	if o.fatalf != nil {
		dispOpts = append(dispOpts, dispatch.WithFatal(o.fatalf))
	}

	g := &GPI{
		be:   be,
		disp: dispatch.New(dispOpts...),
		logb: logging.NewBridge(o.log),
		log:  o.log,
	}
	be.SetEntry(g.disp.Entry)
	return g
}

// Backend returns the bound backend.
func (g *GPI) Backend() backend.Backend {
	return g.be
}

// Dispatcher returns the re-entrancy dispatcher.
func (g *GPI) Dispatcher() *dispatch.Dispatcher {
	return g.disp
}

// Logging returns the diagnostic routing bridge.
func (g *GPI) Logging() *logging.Bridge {
	return g.logb
}

// RootHandle returns the toplevel design unit, or ok == false when no
// backend is available or a non-empty name filter does not match.
func (g *GPI) RootHandle(name string) (*object.Handle, bool) {
	return object.Root(g.be, name, g.log)
}

// HandleByName returns the named child of parent, or ok == false when
// parent is nil or no such child exists.
func (g *GPI) HandleByName(parent *object.Handle, name string) (*object.Handle, bool) {
	if parent == nil {
		return nil, false
	}
	return parent.ChildByName(name)
}

// HandleByIndex returns the positional child of parent, or ok == false
// when parent is nil, not indexable, or the index is out of range.
func (g *GPI) HandleByIndex(parent *object.Handle, idx int) (*object.Handle, bool) {
	if parent == nil {
		return nil, false
	}
	return parent.ChildByIndex(idx)
}

// Iterate returns an iterator over the selected relation of parent.
func (g *GPI) Iterate(parent *object.Handle, sel backend.Selector) (*object.Iterator, error) {
	if parent == nil {
		return nil, errors.InvalidInput(errors.PhaseLookup, "nil object handle")
	}
	return parent.Iterate(sel)
}

// RegisterTimedCallback arms a fixed-delay timer callback.
func (g *GPI) RegisterTimedCallback(delay uint64, fn callback.Func, ctx any) (*callback.Handle, error) {
	return callback.NewTimed(g.be, g.disp, g.log, delay, fn, ctx)
}

// RegisterValueChangeCallback arms an edge-filtered value-change
// callback on the watched signal.
func (g *GPI) RegisterValueChangeCallback(sig *object.Handle, edge callback.Edge, fn callback.Func, ctx any) (*callback.Handle, error) {
	return callback.NewValueChange(g.be, g.disp, g.log, sig, edge, fn, ctx)
}

// RegisterReadOnlyCallback arms a callback for the read-only sync point.
func (g *GPI) RegisterReadOnlyCallback(fn callback.Func, ctx any) (*callback.Handle, error) {
	return callback.NewReadOnly(g.be, g.disp, g.log, fn, ctx)
}

// RegisterReadWriteCallback arms a callback for the read-write sync
// point.
func (g *GPI) RegisterReadWriteCallback(fn callback.Func, ctx any) (*callback.Handle, error) {
	return callback.NewReadWrite(g.be, g.disp, g.log, fn, ctx)
}

// RegisterNextTimeCallback arms a callback for the next timestep
// boundary.
func (g *GPI) RegisterNextTimeCallback(fn callback.Func, ctx any) (*callback.Handle, error) {
	return callback.NewNextTime(g.be, g.disp, g.log, fn, ctx)
}

// RegisterStartOfSimCallback arms a start-of-simulation callback.
func (g *GPI) RegisterStartOfSimCallback(fn callback.Func, ctx any) (*callback.Handle, error) {
	return callback.NewStartOfSim(g.be, g.disp, g.log, fn, ctx)
}

// RegisterEndOfSimCallback arms an end-of-simulation callback. The
// dispatcher enters end-of-run mode before the user function runs so
// fires racing teardown are squashed instead of treated as corruption.
func (g *GPI) RegisterEndOfSimCallback(fn callback.Func, ctx any) (*callback.Handle, error) {
	return callback.NewEndOfSim(g.be, g.disp, g.log, fn, ctx)
}

// Remove requests removal of a callback. Returns 0 on success, non-zero
// on failure. The handle must not be touched afterwards.
func (g *GPI) Remove(h *callback.Handle) int {
	if h == nil {
		return 1
	}
	return h.Remove()
}

// CbInfo returns the registered function and context of a callback
// without firing it.
func (g *GPI) CbInfo(h *callback.Handle) (callback.Func, any, error) {
	if h == nil {
		return nil, nil, errors.InvalidInput(errors.PhaseDispatch, "nil callback handle")
	}
	fn, ctx := h.Info()
	return fn, ctx, nil
}

// EndOfRun marks the simulation as ending, squashing late fires.
func (g *GPI) EndOfRun() {
	g.disp.MarkEnded()
}

// NewClock creates an idle clock driver for the given signal.
func (g *GPI) NewClock(sig *object.Handle) *clock.Driver {
	return clock.New(sig, g.be, g.disp, g.log)
}
