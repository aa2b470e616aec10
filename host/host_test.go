package host

import (
	stderrors "errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	gpi "github.com/hdlbridge/gpi"
	"github.com/hdlbridge/gpi/backend/simsched"
	"github.com/hdlbridge/gpi/errors"
)

type fakeBridge struct {
	loadErr  error
	initErr  error
	entryErr error

	loads     int
	inits     int
	entries   int
	notifies  int
	finalizes int

	argv []string
}

func (f *fakeBridge) Load() error { f.loads++; return f.loadErr }
func (f *fakeBridge) Init() error { f.inits++; return f.initErr }

func (f *fakeBridge) RunEntry(argv []string) error {
	f.entries++
	f.argv = argv
	return f.entryErr
}

func (f *fakeBridge) Notify()   { f.notifies++ }
func (f *fakeBridge) Finalize() { f.finalizes++ }

func newHost(t *testing.T, fb *fakeBridge) (*Host, *simsched.Sim, *gpi.GPI) {
	t.Helper()
	log := zaptest.NewLogger(t)
	sim := simsched.New("fake")
	g := gpi.New(sim, gpi.WithLogger(log), gpi.WithFatal(func(msg string) {
		t.Fatalf("unexpected fatal: %s", msg)
	}))
	h := New(g, fb, WithLogger(log), WithConfig(Config{}))
	return h, sim, g
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvInterpPath, "")
	t.Setenv(EnvAttachDelay, "")
	t.Setenv(EnvTrace, "")

	cfg := FromEnv()
	if cfg.InterpPath != "libgpibridge.so" {
		t.Errorf("default InterpPath = %q", cfg.InterpPath)
	}
	if cfg.AttachDelay != 0 || cfg.Trace {
		t.Errorf("defaults = %+v, want zero delay and no trace", cfg)
	}

	t.Setenv(EnvInterpPath, "/opt/bridge/libcustom.so")
	t.Setenv(EnvAttachDelay, "3")
	t.Setenv(EnvTrace, "1")

	cfg = FromEnv()
	if cfg.InterpPath != "/opt/bridge/libcustom.so" {
		t.Errorf("InterpPath = %q", cfg.InterpPath)
	}
	if cfg.AttachDelay != 3*time.Second {
		t.Errorf("AttachDelay = %v, want 3s", cfg.AttachDelay)
	}
	if !cfg.Trace {
		t.Error("Trace not enabled")
	}
}

func TestFromEnv_Malformed(t *testing.T) {
	t.Setenv(EnvAttachDelay, "soon")
	t.Setenv(EnvTrace, "maybe")

	cfg := FromEnv()
	if cfg.AttachDelay != 0 {
		t.Errorf("AttachDelay = %v for malformed value", cfg.AttachDelay)
	}
	if cfg.Trace {
		t.Error("Trace enabled by malformed value")
	}
}

func TestHost_Lifecycle(t *testing.T) {
	fb := &fakeBridge{}
	h, sim, _ := newHost(t, fb)

	argv := []string{"tb_top", "--seed=42"}
	if err := h.Start(argv); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if fb.loads != 1 || fb.inits != 1 {
		t.Fatalf("loads = %d, inits = %d, want 1 and 1", fb.loads, fb.inits)
	}
	if fb.entries != 0 {
		t.Fatal("entry module ran before start of simulation")
	}

	sim.Start()
	if fb.entries != 1 {
		t.Fatalf("entries = %d after start of simulation, want 1", fb.entries)
	}
	if len(fb.argv) != 2 || fb.argv[0] != "tb_top" || fb.argv[1] != "--seed=42" {
		t.Errorf("entry argv = %v", fb.argv)
	}

	sim.Finish()
	if fb.notifies != 1 {
		t.Errorf("notifies = %d after end of simulation, want 1", fb.notifies)
	}
	if fb.finalizes != 1 {
		t.Errorf("finalizes = %d after end of simulation, want 1", fb.finalizes)
	}
	if h.Failed() {
		t.Error("host marked failed after clean lifecycle")
	}
}

func TestHost_StartTwice(t *testing.T) {
	fb := &fakeBridge{}
	h, _, _ := newHost(t, fb)

	if err := h.Start(nil); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	err := h.Start(nil)
	if err == nil {
		t.Fatal("second Start succeeded")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseInit, Kind: errors.KindInvalidInput}) {
		t.Errorf("error = %v, want invalid_input", err)
	}
}

func TestHost_LoadFailureIsFailSoft(t *testing.T) {
	fb := &fakeBridge{loadErr: stderrors.New("library not found")}
	h, sim, _ := newHost(t, fb)

	if err := h.Start(nil); err == nil {
		t.Fatal("Start succeeded with broken bridge")
	}
	if !h.Failed() {
		t.Fatal("host not marked failed")
	}
	if fb.inits != 0 {
		t.Error("Init called after load failure")
	}

	// The simulation proceeds; the interpreter just never runs.
	sim.Start()
	sim.Finish()
	if fb.entries != 0 || fb.notifies != 0 {
		t.Errorf("interpreter invoked after failed startup: entries = %d, notifies = %d",
			fb.entries, fb.notifies)
	}
}

func TestHost_InitFailureIsFailSoft(t *testing.T) {
	fb := &fakeBridge{initErr: stderrors.New("runtime refused to start")}
	h, sim, _ := newHost(t, fb)

	if err := h.Start(nil); err == nil {
		t.Fatal("Start succeeded with failing init")
	}
	if !h.Failed() {
		t.Fatal("host not marked failed")
	}

	sim.Start()
	sim.Finish()
	if fb.entries != 0 {
		t.Errorf("entries = %d after failed init", fb.entries)
	}
}

func TestHost_EntryErrorEndsSimulation(t *testing.T) {
	fb := &fakeBridge{entryErr: stderrors.New("unhandled exception in entry module")}
	h, sim, g := newHost(t, fb)

	if err := h.Start([]string{"tb"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sim.Start()
	if fb.entries != 1 {
		t.Fatalf("entries = %d, want 1", fb.entries)
	}

	// The entry failure requested end of run: a stray fire with a dead
	// token must now be squashed rather than treated as corruption. The
	// fatal hook installed by newHost fails the test if it runs.
	g.Dispatcher().Entry(9999)
}

func TestHost_ShutdownFinalizesEagerly(t *testing.T) {
	fb := &fakeBridge{}
	h, _, _ := newHost(t, fb)

	if err := h.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	h.Shutdown()
	if fb.finalizes != 1 {
		t.Errorf("finalizes = %d after Shutdown, want 1", fb.finalizes)
	}
}

func TestHost_AttachDelay(t *testing.T) {
	fb := &fakeBridge{}
	log := zaptest.NewLogger(t)
	sim := simsched.New("fake")
	g := gpi.New(sim, gpi.WithLogger(log))

	h := New(g, fb, WithLogger(log), WithConfig(Config{AttachDelay: 2 * time.Second}))
	var slept time.Duration
	h.sleep = func(d time.Duration) { slept = d }

	if err := h.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if slept != 2*time.Second {
		t.Errorf("slept %v, want 2s", slept)
	}
}
