package guard

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// FatalFunc reports an unrecoverable reentrancy violation. The default
// implementation logs and terminates the process; it must not return.
type FatalFunc func(msg string)

// Guard enforces the alternation of control between the native simulator
// context and the embedded interpreter context. Exactly one of the two may
// be active; entering twice or leaving without entering indicates
// reentrancy corruption that cannot be safely unwound.
type Guard struct {
	entered bool
	log     *zap.Logger
	fatalf  FatalFunc
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the guard's logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Guard) { g.log = log }
}

// WithFatal replaces the process-terminating fatal hook. Test harnesses
// install a recording hook here; the replacement must not return control
// to the violating call site (panic or runtime.Goexit).
func WithFatal(f FatalFunc) Option {
	return func(g *Guard) { g.fatalf = f }
}

// New creates an unentered guard.
func New(opts ...Option) *Guard {
	g := &Guard{log: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	if g.fatalf == nil {
		g.fatalf = g.defaultFatal
	}
	return g
}

func (g *Guard) defaultFatal(msg string) {
	g.log.Error(msg)
	fmt.Fprintln(os.Stderr, "gpi: "+msg)
	os.Exit(1)
}

// EnterForeign marks the crossing into the embedded interpreter context.
// Fatal if the interpreter context is already active.
func (g *Guard) EnterForeign() {
	if g.entered {
		g.fatalf("attempted to enter interpreter context while already inside it")
		return
	}
	g.entered = true
}

// LeaveForeign marks the crossing back into the native context.
// Fatal if the interpreter context is not active.
func (g *Guard) LeaveForeign() {
	if !g.entered {
		g.fatalf("attempted to leave interpreter context without having entered it")
		return
	}
	g.entered = false
}

// Entered reports whether the interpreter context is active.
func (g *Guard) Entered() bool {
	return g.entered
}
