// Package errors provides structured error types for the GPI bridge.
//
// Every recoverable failure in the bridge is reported as an *Error carrying
// a Phase (where in processing it happened) and a Kind (what went wrong),
// plus optional human-readable detail and the backend's own diagnostic
// channel content for vendor-interface rejections.
//
// Matching uses Phase and Kind only:
//
//	if errors.Is(err, &gpierrors.Error{Phase: gpierrors.PhaseArm, Kind: gpierrors.KindBackendReject}) {
//	    // backend refused the registration
//	}
//
// Unrecoverable conditions (corrupted callback state, context-crossing
// violations) never surface as errors; they go through the owning
// component's fatal hook instead.
package errors
