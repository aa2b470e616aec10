// Package dispatch serializes callback fires arriving from the backend
// scheduler.
//
// Some simulators react to a no-delay signal write by re-entering the
// callback entry function synchronously, before the writing callback has
// returned. Processing such recursive fires inline would corrupt control
// flow and ordering, so the dispatcher defers them: fires arriving while
// a dispatch is in progress join a pending queue drained strictly FIFO
// after the current run and all of its nested fires complete. This is a
// protocol-level safety property shared by every backend, not a quirk
// workaround.
//
// The dispatcher also owns the token registry that stands in for opaque
// user-data pointers across the backend boundary. A fire carrying an
// unresolvable token is fatal while the simulation is live and squashed
// once it is ending.
package dispatch
