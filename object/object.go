package object

import (
	"go.uber.org/zap"

	"github.com/hdlbridge/gpi/backend"
	"github.com/hdlbridge/gpi/errors"
)

// NullValue is the placeholder returned when the backend reports an
// absent value. Callers always see a defined string, never a null.
const NullValue = "(null)"

// Handle is an opaque reference to one simulation object. Name, path and
// kind strings are fetched lazily and cached for the handle's lifetime.
// A handle never keeps its parent or children alive.
type Handle struct {
	be  backend.Backend
	ref backend.ObjectRef
	log *zap.Logger

	name     string
	path     string
	kindName string
	forced   bool
	closed   bool
}

func newHandle(be backend.Backend, ref backend.ObjectRef, log *zap.Logger) *Handle {
	return &Handle{be: be, ref: ref, log: log}
}

// Root returns a handle to the toplevel design unit. With a non-empty
// name the discovered root must match it. Returns ok == false, never
// panics, when no backend is registered or the filter does not match.
func Root(be backend.Backend, name string, log *zap.Logger) (*Handle, bool) {
	if be == nil {
		return nil, false
	}
	if log == nil {
		log = zap.NewNop()
	}
	ref, ok := be.Root(name)
	if !ok {
		return nil, false
	}
	return newHandle(be, ref, log), true
}

// Ref returns the backend-native reference.
func (h *Handle) Ref() backend.ObjectRef {
	return h.ref
}

// Name returns the simple name of the object.
func (h *Handle) Name() string {
	if h.name == "" {
		if n, ok := h.be.NameOf(h.ref); ok {
			h.name = n
		}
	}
	return h.name
}

// Path returns the full hierarchical path of the object.
func (h *Handle) Path() string {
	if h.path == "" {
		if p, ok := h.be.PathOf(h.ref); ok {
			h.path = p
		}
	}
	return h.path
}

// Kind returns the object's kind.
func (h *Handle) Kind() backend.ObjectKind {
	return h.be.TypeOf(h.ref)
}

// KindName returns the backend's name for the object's kind.
func (h *Handle) KindName() string {
	if h.kindName == "" {
		h.kindName = h.be.KindNameOf(h.ref)
	}
	return h.kindName
}

// ChildByName returns the named child, or ok == false if not found.
func (h *Handle) ChildByName(name string) (*Handle, bool) {
	ref, ok := h.be.ByName(h.ref, name)
	if !ok {
		return nil, false
	}
	return newHandle(h.be, ref, h.log), true
}

// ChildByIndex returns the positional child, or ok == false if the
// object is not indexable or the index is out of range.
func (h *Handle) ChildByIndex(idx int) (*Handle, bool) {
	ref, ok := h.be.ByIndex(h.ref, idx)
	if !ok {
		return nil, false
	}
	return newHandle(h.be, ref, h.log), true
}

// Range reports whether the handle supports positional indexing, and if
// so its bounds and direction.
func (h *Handle) Range() (left, right int, dir backend.Direction, ok bool) {
	return h.be.RangeOf(h.ref)
}

// Iterator produces child handles lazily. It is finite and
// non-restartable.
type Iterator struct {
	be  backend.Backend
	it  backend.Iterator
	log *zap.Logger
}

// Next returns the next handle in the sequence.
func (it *Iterator) Next() (*Handle, bool) {
	ref, ok := it.it.Next()
	if !ok {
		return nil, false
	}
	return newHandle(it.be, ref, it.log), true
}

// Iterate returns an iterator over the selected relation. A supported
// selector with no matches yields an empty, valid iterator; only an
// unsupported selector is an error.
func (h *Handle) Iterate(sel backend.Selector) (*Iterator, error) {
	it, err := h.be.Iterate(h.ref, sel)
	if err != nil {
		code, msg := h.be.Diag()
		h.log.Error("backend rejected iteration",
			zap.String("path", h.Path()),
			zap.Int("diag_code", code),
			zap.String("diag_msg", msg),
		)
		return nil, err
	}
	return &Iterator{be: h.be, it: it, log: h.log}, nil
}

// BinStr returns the value as one character per bit. Absent values are
// normalized to NullValue.
func (h *Handle) BinStr() string {
	v, ok := h.be.BinStr(h.ref)
	if !ok {
		return NullValue
	}
	return v
}

// Str returns the value as an arbitrary byte string, normalized to
// NullValue when absent.
func (h *Handle) Str() string {
	v, ok := h.be.Str(h.ref)
	if !ok {
		return NullValue
	}
	return v
}

// Real returns the value as an IEEE double.
func (h *Handle) Real() (float64, bool) {
	return h.be.Real(h.ref)
}

// Int returns the value as a signed integer. Values with x or z bits
// have no integer reading and report ok == false.
func (h *Handle) Int() (int64, bool) {
	return h.be.Int(h.ref)
}

// SetBinStr writes a bit-string value with the given action.
func (h *Handle) SetBinStr(action backend.Action, value string) error {
	return h.write(action, func() error {
		return h.be.SetBinStr(h.ref, action, value)
	})
}

// SetInt writes an integer value with the given action.
func (h *Handle) SetInt(action backend.Action, value int64) error {
	return h.write(action, func() error {
		return h.be.SetInt(h.ref, action, value)
	})
}

// SetReal writes a real value with the given action.
func (h *Handle) SetReal(action backend.Action, value float64) error {
	return h.write(action, func() error {
		return h.be.SetReal(h.ref, action, value)
	})
}

func (h *Handle) write(action backend.Action, do func() error) error {
	if action == backend.Release && !h.forced {
		return errors.NotForced(h.Path())
	}
	if err := do(); err != nil {
		code, msg := h.be.Diag()
		h.log.Error("backend rejected value write",
			zap.String("path", h.Path()),
			zap.Int("diag_code", code),
			zap.String("diag_msg", msg),
		)
		return err
	}
	switch action {
	case backend.Force:
		h.forced = true
	case backend.Release:
		h.forced = false
	}
	return nil
}

// Close drops the cached strings. The handle must not be used afterwards.
func (h *Handle) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.name = ""
	h.path = ""
	h.kindName = ""
	h.ref = 0
}
