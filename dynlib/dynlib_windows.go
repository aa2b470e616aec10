//go:build windows

package dynlib

import (
	"github.com/hdlbridge/gpi/errors"
)

// Library is an open shared library with resolvable entry points.
type Library struct {
	path string
}

// Open is unsupported on Windows; simulator hosts on this platform load
// the bridge through their own mechanisms.
func Open(path string) (*Library, error) {
	return nil, errors.Unsupported(errors.PhaseLoad, "dynamic loading on windows")
}

// Path returns the path the library was opened from.
func (l *Library) Path() string {
	return l.path
}

// Lookup resolves a named entry point to its address.
func (l *Library) Lookup(name string) (uintptr, error) {
	return 0, errors.Unsupported(errors.PhaseLoad, "dynamic loading on windows")
}

// Bind resolves a named entry point into the given function pointer.
func (l *Library) Bind(fptr any, name string) error {
	return errors.Unsupported(errors.PhaseLoad, "dynamic loading on windows")
}

// Close releases the library handle.
func (l *Library) Close() error {
	return nil
}
