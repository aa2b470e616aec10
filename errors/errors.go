package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLookup   Phase = "lookup"   // object handle discovery
	PhaseValue    Phase = "value"    // value get/set
	PhaseArm      Phase = "arm"      // callback registration
	PhaseFire     Phase = "fire"     // callback dispatch
	PhaseRemove   Phase = "remove"   // callback cancellation
	PhaseDispatch Phase = "dispatch" // re-entrancy dispatcher
	PhaseLoad     Phase = "load"     // shared library loading
	PhaseInit     Phase = "init"     // embedding startup
	PhaseBridge   Phase = "bridge"   // interpreter bridge calls
)

// Kind categorizes the error
type Kind string

const (
	KindBackendReject  Kind = "backend_reject"
	KindNotFound       Kind = "not_found"
	KindUnsupported    Kind = "unsupported"
	KindStaleHandle    Kind = "stale_handle"
	KindNotForced      Kind = "not_forced"
	KindNotInitialized Kind = "not_initialized"
	KindInvalidInput   Kind = "invalid_input"
	KindSymbolMissing  Kind = "symbol_missing"
	KindEntryFailed    Kind = "entry_failed"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string

	// DiagCode and DiagMsg carry the backend's own diagnostic channel
	// content when the backend rejected an operation.
	DiagCode int
	DiagMsg  string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.DiagMsg != "" {
		b.WriteString(fmt.Sprintf(" (backend diag %d: %s)", e.DiagCode, e.DiagMsg))
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// BackendReject wraps a vendor-interface rejection together with the
// backend's diagnostic code and message.
func BackendReject(phase Phase, detail string, code int, msg string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindBackendReject,
		Detail:   detail,
		DiagCode: code,
		DiagMsg:  msg,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// StaleHandle creates an error for operations on removed or destroyed handles
func StaleHandle(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindStaleHandle,
		Detail: detail,
	}
}

// NotForced is returned when release is requested on a handle that was
// never forced.
func NotForced(name string) *Error {
	return &Error{
		Phase:  PhaseValue,
		Kind:   KindNotForced,
		Detail: fmt.Sprintf("release of %q without a prior force", name),
	}
}

// NotInitialized creates a not-initialized error for a failed-soft component
func NotInitialized(component string) *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// SymbolMissing creates an error for a failed entry-point lookup
func SymbolMissing(lib, symbol string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindSymbolMissing,
		Detail: fmt.Sprintf("symbol %q not found in %s", symbol, lib),
		Cause:  cause,
	}
}

// EntryFailed wraps a failure reported by the interpreter entry point
func EntryFailed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseBridge,
		Kind:   KindEntryFailed,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
