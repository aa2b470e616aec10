package interp

import (
	"strings"

	"go.uber.org/zap"

	"github.com/hdlbridge/gpi/dynlib"
	"github.com/hdlbridge/gpi/errors"
	"github.com/hdlbridge/gpi/logging"
)

// Bridge is the surface the embedded interpreter exposes to the host.
type Bridge interface {
	// Init starts the interpreter runtime. Called once.
	Init() error

	// RunEntry loads and invokes the interpreter's entry module with
	// the process argument list.
	RunEntry(argv []string) error

	// Notify invokes the interpreter's registered event function, if
	// one was captured.
	Notify()

	// Finalize tears the interpreter down. Idempotent, and tolerant
	// of initialization having partially failed.
	Finalize()
}

// DefaultLibrary is the compiled-in bridge library name, overridable via
// the GPI_INTERP environment variable.
const DefaultLibrary = "libgpibridge.so"

// argvSeparator joins the argument list for the single-string bridge
// entry ABI.
const argvSeparator = "\x1f"

// Native is the dynamically loaded bridge implementation. All entry
// points are resolved once at load time; a load or lookup failure is
// memoized and every later call becomes a failure-code no-op so a broken
// interpreter installation never takes the host simulator down.
type Native struct {
	path string
	log  *zap.Logger

	lib     *dynlib.Library
	loadErr error

	initialized bool
	finalized   bool

	initFn     func() int32
	entryFn    func(argv string) int32
	eventFn    func()
	finalizeFn func()

	// optional logging entry points
	logFilterFn func(name string, level int32) int32
	logRecordFn func(name string, level int32, file, function string, line int32, msg string)
}

// NewNative creates an unloaded bridge for the library at path.
func NewNative(path string, log *zap.Logger) *Native {
	if log == nil {
		log = zap.NewNop()
	}
	return &Native{path: path, log: log}
}

// Load opens the bridge library and resolves its entry points. The
// result is memoized: a second call returns the first outcome.
func (n *Native) Load() error {
	if n.lib != nil {
		return nil
	}
	if n.loadErr != nil {
		return n.loadErr
	}

	lib, err := dynlib.Open(n.path)
	if err != nil {
		n.log.Error("interpreter bridge library not loadable",
			zap.String("path", n.path),
			zap.Error(err),
		)
		n.loadErr = err
		return err
	}

	required := []struct {
		fptr any
		name string
	}{
		{&n.initFn, "gpi_bridge_init"},
		{&n.entryFn, "gpi_bridge_entry"},
		{&n.eventFn, "gpi_bridge_event"},
		{&n.finalizeFn, "gpi_bridge_finalize"},
	}
	for _, sym := range required {
		if err := lib.Bind(sym.fptr, sym.name); err != nil {
			n.log.Error("interpreter bridge entry point missing",
				zap.String("path", n.path),
				zap.String("symbol", sym.name),
			)
			n.loadErr = err
			_ = lib.Close()
			return err
		}
	}

	// Logging entry points are optional; older bridges may not have
	// them.
	if err := lib.Bind(&n.logFilterFn, "gpi_bridge_log_filter"); err != nil {
		n.logFilterFn = nil
	}
	if err := lib.Bind(&n.logRecordFn, "gpi_bridge_log"); err != nil {
		n.logRecordFn = nil
	}

	n.lib = lib
	return nil
}

func (n *Native) usable() error {
	if n.loadErr != nil {
		return n.loadErr
	}
	if n.lib == nil {
		return errors.NotInitialized("interpreter bridge")
	}
	if n.finalized {
		return errors.StaleHandle(errors.PhaseBridge, "bridge already finalized")
	}
	return nil
}

// Init implements Bridge.
func (n *Native) Init() error {
	if err := n.usable(); err != nil {
		return err
	}
	if n.initialized {
		return nil
	}
	if rc := n.initFn(); rc != 0 {
		return errors.Wrap(errors.PhaseInit, errors.KindEntryFailed, nil,
			"interpreter initialization returned non-zero")
	}
	n.initialized = true
	return nil
}

// RunEntry implements Bridge.
func (n *Native) RunEntry(argv []string) error {
	if err := n.usable(); err != nil {
		return err
	}
	if !n.initialized {
		return errors.NotInitialized("interpreter runtime")
	}
	if rc := n.entryFn(strings.Join(argv, argvSeparator)); rc != 0 {
		return errors.EntryFailed("entry module reported failure", nil)
	}
	return nil
}

// Notify implements Bridge.
func (n *Native) Notify() {
	if n.usable() != nil || !n.initialized {
		return
	}
	n.eventFn()
}

// Finalize implements Bridge. Safe to call repeatedly and after a
// partial initialization failure.
func (n *Native) Finalize() {
	if n.finalized || n.lib == nil {
		n.finalized = true
		return
	}
	n.finalized = true
	n.finalizeFn()
	if err := n.lib.Close(); err != nil {
		n.log.Warn("interpreter bridge library close failed", zap.Error(err))
	}
}

// InstallLogging wires the bridge's log entry points into the logging
// bridge, when the loaded library provides them.
func (n *Native) InstallLogging(lb *logging.Bridge) {
	if n.lib == nil {
		return
	}
	if n.logFilterFn != nil {
		filter := n.logFilterFn
		lb.SetFilter(func(name string, level logging.Level) bool {
			return filter(name, int32(level)) != 0
		})
	}
	if n.logRecordFn != nil {
		record := n.logRecordFn
		lb.SetHandler(func(name string, level logging.Level, file, function string, line int, msg string) {
			record(name, int32(level), file, function, int32(line), msg)
		})
	}
}

var _ Bridge = (*Native)(nil)
