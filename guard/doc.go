// Package guard enforces single-threaded alternation between the native
// simulator context and the embedded interpreter context.
//
// The model is cooperative: there is one logical thread of control, so the
// guard is an asserted non-reentrant-region flag rather than a mutex. Every
// crossing into the interpreter is bracketed:
//
//	g.EnterForeign()
//	bridge.RunEntry(argv)
//	g.LeaveForeign()
//
// A violation is always fatal. It means a callback re-entered the
// interpreter while the interpreter was already on the stack, and no safe
// unwind exists from that state.
package guard
