//go:build !windows

package dynlib

import (
	"github.com/ebitengine/purego"

	"github.com/hdlbridge/gpi/errors"
)

// Library is an open shared library with resolvable entry points.
type Library struct {
	path   string
	handle uintptr
}

// Open loads the shared library at path and resolves it eagerly.
func Open(path string) (*Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "open "+path)
	}
	return &Library{path: path, handle: handle}, nil
}

// Path returns the path the library was opened from.
func (l *Library) Path() string {
	return l.path
}

// Lookup resolves a named entry point to its address.
func (l *Library) Lookup(name string) (uintptr, error) {
	addr, err := purego.Dlsym(l.handle, name)
	if err != nil {
		return 0, errors.SymbolMissing(l.path, name, err)
	}
	return addr, nil
}

// Bind resolves a named entry point into the given function pointer.
// fptr must be a pointer to a function variable with a signature matching
// the native entry point.
func (l *Library) Bind(fptr any, name string) error {
	if _, err := l.Lookup(name); err != nil {
		return err
	}
	purego.RegisterLibFunc(fptr, l.handle, name)
	return nil
}

// Close releases the library handle. Resolved entry points must not be
// called afterwards.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "close "+l.path)
	}
	return nil
}
