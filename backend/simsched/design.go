package simsched

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hdlbridge/gpi/backend"
	"github.com/hdlbridge/gpi/errors"
)

type object struct {
	kind     backend.ObjectKind
	name     string
	path     string
	parent   backend.ObjectRef
	children []backend.ObjectRef

	// signal state
	width  int
	isReal bool
	val    string  // deposited bit-string, one char per bit
	realV  float64 // deposited real value
	forced bool
	fval   string
	frealV float64

	// parameter state
	strVal string

	// array state
	left, right int
	dir         backend.Direction

	watchers []backend.CallbackRef
}

func (o *object) effective() string {
	if o.forced {
		return o.fval
	}
	return o.val
}

func (o *object) effectiveReal() float64 {
	if o.forced {
		return o.frealV
	}
	return o.realV
}

func (s *Sim) obj(ref backend.ObjectRef) *object {
	if ref == 0 || int(ref) > len(s.objects) {
		return nil
	}
	return s.objects[ref-1]
}

func (s *Sim) addObject(parent backend.ObjectRef, o *object) backend.ObjectRef {
	if p := s.obj(parent); p != nil {
		o.parent = parent
		o.path = p.path + "." + o.name
	} else {
		o.path = o.name
	}
	s.objects = append(s.objects, o)
	ref := backend.ObjectRef(len(s.objects))
	if p := s.obj(parent); p != nil {
		p.children = append(p.children, ref)
	} else if s.root == 0 {
		s.root = ref
	}
	return ref
}

// AddModule adds a design unit. A zero parent makes it the root.
func (s *Sim) AddModule(parent backend.ObjectRef, name string) backend.ObjectRef {
	return s.addObject(parent, &object{kind: backend.KindModule, name: name})
}

// AddSignal adds a bit-vector signal of the given width, initialized to
// all-x.
func (s *Sim) AddSignal(parent backend.ObjectRef, name string, width int) backend.ObjectRef {
	return s.addObject(parent, &object{
		kind:  backend.KindSignal,
		name:  name,
		width: width,
		val:   strings.Repeat("x", width),
	})
}

// AddReal adds a real-valued signal.
func (s *Sim) AddReal(parent backend.ObjectRef, name string) backend.ObjectRef {
	return s.addObject(parent, &object{kind: backend.KindSignal, name: name, isReal: true})
}

// AddParam adds a string parameter.
func (s *Sim) AddParam(parent backend.ObjectRef, name, value string) backend.ObjectRef {
	return s.addObject(parent, &object{kind: backend.KindParameter, name: name, strVal: value})
}

// AddArray adds an indexable array of n single-bit element signals named
// name[0] through name[n-1].
func (s *Sim) AddArray(parent backend.ObjectRef, name string, n int) backend.ObjectRef {
	ref := s.addObject(parent, &object{
		kind:  backend.KindArray,
		name:  name,
		left:  0,
		right: n - 1,
		dir:   backend.DirAscending,
	})
	for i := 0; i < n; i++ {
		s.AddSignal(ref, fmt.Sprintf("%s[%d]", name, i), 1)
	}
	return ref
}

// Introspector implementation

func (s *Sim) Root(name string) (backend.ObjectRef, bool) {
	o := s.obj(s.root)
	if o == nil {
		return 0, false
	}
	if name != "" && name != o.name {
		return 0, false
	}
	return s.root, true
}

func (s *Sim) ByName(parent backend.ObjectRef, name string) (backend.ObjectRef, bool) {
	p := s.obj(parent)
	if p == nil {
		return 0, false
	}
	for _, c := range p.children {
		if s.obj(c).name == name {
			return c, true
		}
	}
	return 0, false
}

func (s *Sim) ByIndex(parent backend.ObjectRef, idx int) (backend.ObjectRef, bool) {
	p := s.obj(parent)
	if p == nil || p.kind != backend.KindArray {
		return 0, false
	}
	if idx < 0 || idx >= len(p.children) {
		return 0, false
	}
	return p.children[idx], true
}

type sliceIterator struct {
	refs []backend.ObjectRef
	pos  int
}

func (it *sliceIterator) Next() (backend.ObjectRef, bool) {
	if it.pos >= len(it.refs) {
		return 0, false
	}
	ref := it.refs[it.pos]
	it.pos++
	return ref, true
}

func (s *Sim) Iterate(parent backend.ObjectRef, sel backend.Selector) (backend.Iterator, error) {
	p := s.obj(parent)
	if p == nil {
		s.setDiag(diagBadHandle, "iterate on invalid object ref")
		return nil, errors.StaleHandle(errors.PhaseLookup, "iterate on invalid object ref")
	}
	switch sel {
	case backend.SelectChildren:
		refs := make([]backend.ObjectRef, len(p.children))
		copy(refs, p.children)
		return &sliceIterator{refs: refs}, nil
	default:
		// Drivers and loads are net topology this scheduler does not model.
		s.setDiag(diagUnsupported, "selector not supported by simsched")
		return nil, errors.Unsupported(errors.PhaseLookup, "selector not supported by simsched")
	}
}

func (s *Sim) NameOf(ref backend.ObjectRef) (string, bool) {
	o := s.obj(ref)
	if o == nil {
		return "", false
	}
	return o.name, true
}

func (s *Sim) PathOf(ref backend.ObjectRef) (string, bool) {
	o := s.obj(ref)
	if o == nil {
		return "", false
	}
	return o.path, true
}

func (s *Sim) TypeOf(ref backend.ObjectRef) backend.ObjectKind {
	o := s.obj(ref)
	if o == nil {
		return backend.KindUnknown
	}
	return o.kind
}

func (s *Sim) KindNameOf(ref backend.ObjectRef) string {
	o := s.obj(ref)
	if o == nil {
		return backend.KindUnknown.String()
	}
	if o.kind == backend.KindSignal && o.isReal {
		return "real"
	}
	return o.kind.String()
}

func (s *Sim) RangeOf(ref backend.ObjectRef) (left, right int, dir backend.Direction, indexable bool) {
	o := s.obj(ref)
	if o == nil || o.kind != backend.KindArray {
		return 0, 0, backend.DirUndefined, false
	}
	return o.left, o.right, o.dir, true
}

// Valuer implementation

func (s *Sim) BinStr(ref backend.ObjectRef) (string, bool) {
	o := s.obj(ref)
	if o == nil || o.kind != backend.KindSignal || o.isReal {
		return "", false
	}
	return o.effective(), true
}

func (s *Sim) Str(ref backend.ObjectRef) (string, bool) {
	o := s.obj(ref)
	if o == nil {
		return "", false
	}
	switch o.kind {
	case backend.KindParameter:
		return o.strVal, true
	case backend.KindSignal:
		if o.isReal {
			return "", false
		}
		return o.effective(), true
	default:
		return "", false
	}
}

func (s *Sim) Real(ref backend.ObjectRef) (float64, bool) {
	o := s.obj(ref)
	if o == nil || o.kind != backend.KindSignal || !o.isReal {
		return 0, false
	}
	return o.effectiveReal(), true
}

func (s *Sim) Int(ref backend.ObjectRef) (int64, bool) {
	o := s.obj(ref)
	if o == nil || o.kind != backend.KindSignal || o.isReal {
		return 0, false
	}
	v, err := strconv.ParseInt(o.effective(), 2, 64)
	if err != nil {
		// x or z bits have no integer reading
		return 0, false
	}
	return v, true
}

func (s *Sim) SetBinStr(ref backend.ObjectRef, action backend.Action, value string) error {
	o := s.obj(ref)
	if o == nil || o.kind != backend.KindSignal || o.isReal {
		s.setDiag(diagBadHandle, "bit-string write on non-signal")
		return errors.StaleHandle(errors.PhaseValue, "bit-string write on non-signal")
	}
	if len(value) != o.width {
		s.setDiag(diagBadValue, fmt.Sprintf("width mismatch: got %d bits, signal has %d", len(value), o.width))
		return errors.InvalidInput(errors.PhaseValue, "bit-string width mismatch")
	}
	return s.applyWrite(ref, o, action, func() {
		switch action {
		case backend.Force:
			o.fval = value
		default:
			o.val = value
		}
	})
}

func (s *Sim) SetInt(ref backend.ObjectRef, action backend.Action, value int64) error {
	o := s.obj(ref)
	if o == nil || o.kind != backend.KindSignal || o.isReal {
		s.setDiag(diagBadHandle, "integer write on non-signal")
		return errors.StaleHandle(errors.PhaseValue, "integer write on non-signal")
	}
	bits := make([]byte, o.width)
	for i := 0; i < o.width; i++ {
		if value&(1<<uint(o.width-1-i)) != 0 {
			bits[i] = '1'
		} else {
			bits[i] = '0'
		}
	}
	return s.SetBinStr(ref, action, string(bits))
}

func (s *Sim) SetReal(ref backend.ObjectRef, action backend.Action, value float64) error {
	o := s.obj(ref)
	if o == nil || o.kind != backend.KindSignal || !o.isReal {
		s.setDiag(diagBadHandle, "real write on non-real signal")
		return errors.StaleHandle(errors.PhaseValue, "real write on non-real signal")
	}
	return s.applyWrite(ref, o, action, func() {
		switch action {
		case backend.Force:
			o.frealV = value
		default:
			o.realV = value
		}
	})
}

// applyWrite runs the store under force/release bookkeeping and emits a
// value-change notification when the effective value actually changed.
func (s *Sim) applyWrite(ref backend.ObjectRef, o *object, action backend.Action, store func()) error {
	if action == backend.Release {
		if !o.forced {
			s.setDiag(diagNotForced, "release without a prior force")
			return errors.NotForced(o.path)
		}
		before := o.effective()
		o.forced = false
		if o.effective() != before {
			s.notifyChange(o)
		}
		return nil
	}

	before := o.effective()
	beforeReal := o.effectiveReal()
	store()
	if action == backend.Force {
		o.forced = true
	}
	if o.effective() != before || o.effectiveReal() != beforeReal {
		s.notifyChange(o)
	}
	return nil
}
