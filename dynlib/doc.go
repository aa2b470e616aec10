// Package dynlib opens shared libraries and resolves named entry points at
// runtime.
//
// It is used once at startup to locate the embedded-interpreter bridge
// implementation. Lookups are eager and errors carry the library path and
// symbol name; callers memoize failures rather than retrying.
package dynlib
