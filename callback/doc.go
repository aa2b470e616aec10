// Package callback implements the per-registration handle state machine.
//
// A handle moves through a fixed lifecycle:
//
//	UNARMED → ARMED → (FIRED → re-armed → ARMED)
//	                | (FIRED → destroyed)
//	                | (REMOVE_REQUESTED → destroyed)
//
// The handle is owned by the scheduler once armed: the backend may fire
// into code paths that have already returned, so the handle reclaims
// itself when it determines no further firing will occur, either because
// it fired as a one-shot or because an explicit removal succeeded. Any
// fire that races a removal observes the removed flag and squashes
// itself instead of invoking user code on stale state.
//
// Value-change handles apply an edge predicate before invoking the user
// function; a filtered fire leaves the registration armed. A matching
// fire is one-shot from the caller's perspective even though the backend
// primitive is recurring: the registration is cancelled inline, or, on
// backends whose cleanup policy forbids inline deletion, flagged and
// reclaimed on the next stray fire.
package callback
