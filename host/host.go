package host

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	gpi "github.com/hdlbridge/gpi"
	"github.com/hdlbridge/gpi/errors"
	"github.com/hdlbridge/gpi/guard"
	"github.com/hdlbridge/gpi/interp"
)

// Environment variables recognized at startup.
const (
	// EnvInterpPath overrides the interpreter bridge library path.
	EnvInterpPath = "GPI_INTERP"
	// EnvAttachDelay is a delay in seconds applied before startup
	// proceeds, to allow external debugger attachment.
	EnvAttachDelay = "GPI_ATTACH"
	// EnvTrace enables debug tracing.
	EnvTrace = "GPI_TRACE"
)

// Config is the environment-influenced startup configuration.
type Config struct {
	InterpPath  string
	AttachDelay time.Duration
	Trace       bool
}

// FromEnv reads the recognized environment options, falling back to the
// compiled-in defaults.
func FromEnv() Config {
	cfg := Config{InterpPath: interp.DefaultLibrary}
	if p := os.Getenv(EnvInterpPath); p != "" {
		cfg.InterpPath = p
	}
	if d := os.Getenv(EnvAttachDelay); d != "" {
		if secs, err := strconv.Atoi(d); err == nil && secs > 0 {
			cfg.AttachDelay = time.Duration(secs) * time.Second
		}
	}
	if tr := os.Getenv(EnvTrace); tr != "" {
		if v, err := strconv.ParseBool(tr); err == nil {
			cfg.Trace = v
		}
	}
	return cfg
}

// loader is implemented by bridges that resolve their entry points
// lazily from a shared library.
type loader interface {
	Load() error
}

// Host brackets the embedded interpreter's lifetime with the
// simulation's lifetime: one-time startup, the start/end-of-simulation
// callbacks, and idempotent finalization.
//
// Initialization is fail-soft: any failure marks the host failed and
// every dependent step becomes a no-op returning a failure code, so a
// broken interpreter never takes the simulator process down. Only
// context-crossing violations remain fatal.
type Host struct {
	g      *gpi.GPI
	bridge interp.Bridge
	guard  *guard.Guard
	log    *zap.Logger
	cfg    Config

	failed  bool
	started bool
	sleep   func(time.Duration)
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host's logger.
func WithLogger(log *zap.Logger) Option {
	return func(h *Host) { h.log = log }
}

// WithConfig overrides the environment-derived configuration.
func WithConfig(cfg Config) Option {
	return func(h *Host) { h.cfg = cfg }
}

// WithGuard substitutes the context-crossing guard.
func WithGuard(g *guard.Guard) Option {
	return func(h *Host) { h.guard = g }
}

// New creates a host for the given GPI and interpreter bridge.
func New(g *gpi.GPI, bridge interp.Bridge, opts ...Option) *Host {
	h := &Host{
		g:      g,
		bridge: bridge,
		log:    zap.NewNop(),
		cfg:    FromEnv(),
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.guard == nil {
		h.guard = guard.New(guard.WithLogger(h.log))
	}
	return h
}

// Failed reports whether initialization failed; all dependent calls are
// no-ops once it has.
func (h *Host) Failed() bool {
	return h.failed
}

func (h *Host) fail(step string, err error) error {
	h.failed = true
	h.log.Error("embedding initialization failed, interpreter disabled",
		zap.String("step", step),
		zap.Error(err),
	)
	return err
}

// Start performs the one-time startup sequence: optional attach delay,
// interpreter load and initialization, and registration of the
// start-of-simulation, end-of-simulation and finalize callbacks.
func (h *Host) Start(argv []string) error {
	if h.started {
		return errors.InvalidInput(errors.PhaseInit, "host already started")
	}
	if h.failed {
		return errors.NotInitialized("embedding host")
	}
	h.started = true

	if h.cfg.AttachDelay > 0 {
		h.log.Info("pausing for debugger attach",
			zap.Duration("delay", h.cfg.AttachDelay),
			zap.Int("pid", os.Getpid()),
		)
		h.sleep(h.cfg.AttachDelay)
	}
	if h.cfg.Trace {
		h.log.Info("debug tracing enabled",
			zap.String("interp", h.cfg.InterpPath),
		)
	}

	if l, ok := h.bridge.(loader); ok {
		if err := l.Load(); err != nil {
			return h.fail("load", err)
		}
	}
	if err := h.bridge.Init(); err != nil {
		return h.fail("init", err)
	}
	if n, ok := h.bridge.(*interp.Native); ok {
		n.InstallLogging(h.g.Logging())
	}

	if _, err := h.g.RegisterStartOfSimCallback(h.startOfSim, argv); err != nil {
		return h.fail("register start-of-sim", err)
	}
	if _, err := h.g.RegisterEndOfSimCallback(h.endOfSim, nil); err != nil {
		return h.fail("register end-of-sim", err)
	}
	// Finalization runs after the event notification; end-of-sim
	// callbacks fire in registration order.
	if _, err := h.g.RegisterEndOfSimCallback(h.finalize, nil); err != nil {
		return h.fail("register finalize", err)
	}
	return nil
}

// startOfSim crosses into the interpreter and runs the entry module
// with the process argument list.
func (h *Host) startOfSim(ctx any) {
	if h.failed {
		return
	}
	argv, _ := ctx.([]string)

	h.guard.EnterForeign()
	err := h.bridge.RunEntry(argv)
	h.guard.LeaveForeign()

	if err != nil {
		// An entry failure is a request to end the simulation, not
		// something the backend can unwind.
		h.log.Error("interpreter entry failed, ending simulation", zap.Error(err))
		h.g.EndOfRun()
	}
}

// endOfSim delivers the end-of-simulation event to the interpreter.
func (h *Host) endOfSim(any) {
	if h.failed {
		return
	}
	h.guard.EnterForeign()
	h.bridge.Notify()
	h.guard.LeaveForeign()
}

// finalize tears the interpreter down. Idempotent, and registered even
// when initialization partially failed.
func (h *Host) finalize(any) {
	h.bridge.Finalize()
}

// Shutdown finalizes the interpreter eagerly, for hosts torn down
// outside the simulator's end-of-simulation path.
func (h *Host) Shutdown() {
	h.bridge.Finalize()
}
