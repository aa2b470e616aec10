// Package host orchestrates embedding: it ties the interpreter bridge's
// lifetime to the simulation's lifetime. Startup loads and initializes
// the bridge and registers the simulation-phase callbacks; the entry
// module runs at start of simulation inside the context-crossing guard,
// the interpreter is notified at end of simulation, and finalization is
// idempotent and tolerant of partial initialization.
//
// Startup is configured from the environment: GPI_INTERP overrides the
// bridge library path, GPI_ATTACH delays startup for debugger
// attachment, and GPI_TRACE enables tracing.
package host
