//go:build !windows

package interp

import (
	stderrors "errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/hdlbridge/gpi/errors"
)

func TestNative_LoadFailureIsMemoized(t *testing.T) {
	n := NewNative("/nonexistent/libgpibridge.so", zaptest.NewLogger(t))

	first := n.Load()
	if first == nil {
		t.Fatal("load of missing library succeeded")
	}
	second := n.Load()
	if second != first {
		t.Errorf("second Load() = %v, want memoized %v", second, first)
	}
}

func TestNative_CallsAfterLoadFailureFailSoft(t *testing.T) {
	n := NewNative("/nonexistent/libgpibridge.so", zaptest.NewLogger(t))
	_ = n.Load()

	if err := n.Init(); err == nil {
		t.Error("Init after load failure succeeded")
	}
	if err := n.RunEntry([]string{"a", "b"}); err == nil {
		t.Error("RunEntry after load failure succeeded")
	}

	// Must be no-ops, not crashes.
	n.Notify()
	n.Finalize()
	n.Finalize()
}

func TestNative_UseBeforeLoad(t *testing.T) {
	n := NewNative(DefaultLibrary, nil)

	err := n.Init()
	if err == nil {
		t.Fatal("Init before Load succeeded")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseInit, Kind: errors.KindNotInitialized}) {
		t.Errorf("error = %v, want not_initialized", err)
	}
}
