// Package logging routes GPI diagnostic records.
//
// Records flow to one of two sinks: an external Handler installed by the
// embedded interpreter (so native diagnostics appear in the interpreter's
// own logging system), or a native zap fallback used before the interpreter
// is up and after it is torn down.
//
// An installable FilterFunc runs before message formatting; a record
// suppressed by the filter never pays the fmt.Sprintf cost. Call Enabled
// first when argument preparation itself is expensive:
//
//	if bridge.Enabled("gpi", logging.LevelDebug) {
//	    bridge.Log("gpi", logging.LevelDebug, file, fn, line, "value of %s: %s", name, costly())
//	}
package logging
