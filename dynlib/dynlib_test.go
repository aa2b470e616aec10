//go:build !windows

package dynlib

import (
	stderrors "errors"
	"testing"

	"github.com/hdlbridge/gpi/errors"
)

func TestOpen_MissingLibrary(t *testing.T) {
	lib, err := Open("/nonexistent/libgpibridge.so")
	if err == nil {
		t.Fatal("Open of missing library succeeded")
	}
	if lib != nil {
		t.Error("Open returned a library alongside an error")
	}

	var gerr *errors.Error
	if !stderrors.As(err, &gerr) {
		t.Fatalf("error type = %T, want *errors.Error", err)
	}
	if gerr.Phase != errors.PhaseLoad {
		t.Errorf("phase = %v, want %v", gerr.Phase, errors.PhaseLoad)
	}
}
