package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseArm,
				Kind:   KindBackendReject,
				Detail: "value-change registration",
			},
			contains: []string{"[arm]", "backend_reject", "value-change registration"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLookup,
				Kind:  KindNotFound,
			},
			contains: []string{"[lookup]", "not_found"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindSymbolMissing,
				Detail: "gpi_bridge_init",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "symbol_missing", "gpi_bridge_init", "caused by", "underlying error"},
		},
		{
			name: "backend diagnostic",
			err:  BackendReject(PhaseRemove, "cancel timer", 7, "no such registration"),
			contains: []string{
				"[remove]", "backend_reject", "cancel timer", "backend diag 7", "no such registration",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseBridge, KindEntryFailed, cause, "entry module")

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestError_Is(t *testing.T) {
	err := NotFound(PhaseLookup, "child", "tb.dut.missing")

	if !errors.Is(err, &Error{Phase: PhaseLookup, Kind: KindNotFound}) {
		t.Error("expected match on same phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseValue, Kind: KindNotFound}) {
		t.Error("unexpected match across phases")
	}
	if errors.Is(err, errors.New("other")) {
		t.Error("unexpected match against plain error")
	}
}

func TestConstructors(t *testing.T) {
	if got := NotForced("tb.sig").Kind; got != KindNotForced {
		t.Errorf("NotForced kind = %v", got)
	}
	if got := NotInitialized("interpreter bridge").Error(); !strings.Contains(got, "interpreter bridge not initialized") {
		t.Errorf("NotInitialized message = %q", got)
	}
	if got := Unsupported(PhaseLookup, "driver iteration").Kind; got != KindUnsupported {
		t.Errorf("Unsupported kind = %v", got)
	}
}
