// Package interp talks to the embedded high-level interpreter through a
// narrow bridge: initialize, run the entry module with the process
// arguments, deliver the end-of-simulation event, and finalize.
//
// The native implementation is resolved from a shared library at startup
// (GPI_INTERP, else the compiled-in default). Every failure during
// loading is memoized and later calls fail soft: the host simulator must
// keep running even when the interpreter installation is broken.
package interp
