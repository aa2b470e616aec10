// Package gpi is a generic procedural interface for driving HDL
// simulators: one control surface over the vendor-specific callback and
// introspection APIs simulators expose for observing and manipulating a
// running simulation.
//
// The hard problem is not the vendor interfaces themselves but the
// callback lifecycle layered on top of them: registering, arming,
// firing, removing, and safely reclaiming per-callback state whose
// lifetime is entangled with asynchronous, simulator-driven invocation,
// while crossing into and out of an embedded interpreter without
// violating single-threaded reentrancy invariants.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	gpi/                 Root facade: registration and lookup surface
//	├── backend/         Vendor procedural-interface capability seam
//	│   └── simsched/    Reference in-memory event-scheduler backend
//	├── callback/        Per-registration handle state machine
//	├── dispatch/        Re-entrancy queuing dispatcher
//	├── object/          Opaque handles to simulation objects
//	├── clock/           Self-rearming clock driver
//	├── guard/           Native/interpreter context-crossing guard
//	├── interp/          Embedded interpreter bridge
//	├── dynlib/          Runtime shared-library symbol resolution
//	├── logging/         Level-filtered diagnostic routing
//	├── errors/          Structured error types
//	└── host/            Embedding orchestrator
//
// # Quick Start
//
// Bind a backend, look up a signal, and wait for its rising edge:
//
//	g := gpi.New(be, gpi.WithLogger(log))
//
//	root, _ := g.RootHandle("")
//	clk, _ := root.ChildByName("clk")
//
//	g.RegisterValueChangeCallback(clk, callback.Rising, func(ctx any) {
//	    // runs once, when clk reads exactly "1"
//	}, nil)
//
// # Callback Lifetime
//
// Callback handles are owned by the scheduler once armed: a handle
// reclaims itself after its one-shot fire or a successful removal, and
// a fire racing a removal squashes itself. Callers must treat a handle
// as gone the moment they call Remove.
//
// # Concurrency
//
// The model is single-threaded and cooperative: the simulator drives
// one logical thread of control and there are no blocking waits in this
// layer. Fires arriving while a dispatch is in progress are queued and
// run strictly FIFO after the current callback returns.
package gpi
