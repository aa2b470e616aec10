// Package simsched is the reference in-memory backend: a discrete-event
// scheduler with a buildable design tree, four-phase timesteps, and the
// vendor quirks the callback layer has to survive.
//
// # Design tree
//
// Tests construct hierarchy directly:
//
//	sim := simsched.New("sim")
//	tb := sim.AddModule(0, "tb")
//	dut := sim.AddModule(tb, "dut")
//	clk := sim.AddSignal(dut, "clk", 1)
//
// # Timestep phases
//
// Each processed timestep runs next-timestep registrations, due timers,
// pending value-change notifications, the read-write synchronization
// phase (re-draining value changes between callbacks), then the
// read-only phase.
//
// # Quirk modes
//
// WithImmediateReaction() makes a signal write fire matching value-change
// registrations synchronously inside the write, the behavior that forces
// the re-entrancy queue in package dispatch. WithPolicy selects the
// inline versus deferred callback cleanup convention, and DenyCancel
// exercises the removal-failure path.
package simsched
