// Package clock provides a self-rearming clock driver built on timed
// callbacks.
//
// The driver owns its signal's drive value and schedules one timed
// callback per half period. Stop only raises the exit flag; the actual
// teardown happens on the next scheduled fire, matching the callback
// layer's rule that handles are reclaimed by their own final firing.
package clock
