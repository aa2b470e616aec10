package backend

// ObjectRef is a backend-native reference to one simulation object.
// The zero ref is always invalid.
type ObjectRef uint64

// CallbackRef is a backend-native reference to one scheduler registration.
// The zero ref is always invalid.
type CallbackRef uint64

// EntryFunc is the single re-entry function the backend invokes for every
// fired callback, passing back the opaque user token supplied at
// registration time.
type EntryFunc func(user uint64)

// ObjectKind classifies a simulation object.
type ObjectKind uint8

const (
	KindUnknown ObjectKind = iota
	KindModule
	KindSignal
	KindArray
	KindMemory
	KindParameter
)

// String returns the kind name as the backend would report it.
func (k ObjectKind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindSignal:
		return "signal"
	case KindArray:
		return "array"
	case KindMemory:
		return "memory"
	case KindParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// Direction is the index ordering of a ranged object.
type Direction uint8

const (
	DirUndefined Direction = iota
	DirAscending
	DirDescending
)

// Action qualifies a value write.
type Action uint8

const (
	// Deposit is the default procedural write.
	Deposit Action = iota
	// Force overrides the value until released.
	Force
	// Release cancels a prior force.
	Release
)

// Selector names a relation to iterate over.
type Selector uint8

const (
	SelectChildren Selector = iota
	SelectDrivers
	SelectLoads
)

// CleanupPolicy is the backend-specific convention for reclaiming a
// callback object after it fires. Some backends tolerate inline deletion
// in the fired callback; others require deferring to the next fire.
type CleanupPolicy uint8

const (
	InlineDelete CleanupPolicy = iota
	DeferredDelete
)

// Iterator produces a lazy, finite, non-restartable sequence of object
// refs. Next returns false once exhausted; an iterator over an empty
// relation is valid and immediately exhausted.
type Iterator interface {
	Next() (ObjectRef, bool)
}

// Introspector is the object discovery and query surface.
type Introspector interface {
	// Root returns the toplevel design unit. With a non-empty name the
	// discovered root must match it, else ok is false.
	Root(name string) (ObjectRef, bool)

	// ByName returns the named child of parent.
	ByName(parent ObjectRef, name string) (ObjectRef, bool)

	// ByIndex returns the positional child of parent.
	ByIndex(parent ObjectRef, idx int) (ObjectRef, bool)

	// Iterate returns an iterator over the selected relation of parent.
	// A supported selector with no matches yields an empty iterator;
	// only an unsupported selector is an error.
	Iterate(parent ObjectRef, sel Selector) (Iterator, error)

	// NameOf returns the simple name of the object.
	NameOf(ref ObjectRef) (string, bool)

	// PathOf returns the full hierarchical path of the object.
	PathOf(ref ObjectRef) (string, bool)

	// TypeOf returns the object's kind.
	TypeOf(ref ObjectRef) ObjectKind

	// KindNameOf returns the backend's own name for the object's kind,
	// which may be more specific than the ObjectKind classification.
	KindNameOf(ref ObjectRef) string

	// RangeOf reports positional indexability. Non-indexable objects
	// return indexable == false and undefined bounds.
	RangeOf(ref ObjectRef) (left, right int, dir Direction, indexable bool)
}

// Valuer is the value get/set surface.
type Valuer interface {
	// BinStr returns the value as one character per bit over {0,1,x,z,...}.
	// An absent value is reported as ok == false, never as a garbage string.
	BinStr(ref ObjectRef) (string, bool)

	// Str returns the value as an arbitrary byte string.
	Str(ref ObjectRef) (string, bool)

	// Real returns the value as an IEEE double.
	Real(ref ObjectRef) (float64, bool)

	// Int returns the value as a signed integer.
	Int(ref ObjectRef) (int64, bool)

	SetBinStr(ref ObjectRef, action Action, value string) error
	SetInt(ref ObjectRef, action Action, value int64) error
	SetReal(ref ObjectRef, action Action, value float64) error
}

// Scheduler is the callback registration surface. Every registration
// carries an opaque user token; when the trigger condition occurs the
// backend invokes the installed entry function with that token.
type Scheduler interface {
	// SetEntry installs the process-wide re-entry function. Must be
	// called exactly once before any registration.
	SetEntry(entry EntryFunc)

	// RegisterTimed schedules a fire after delay simulation units.
	RegisterTimed(delay uint64, user uint64) (CallbackRef, error)

	// RegisterValueChange fires on every change of the referenced
	// signal until cancelled. The primitive is recurring; one-shot
	// semantics are layered above.
	RegisterValueChange(ref ObjectRef, user uint64) (CallbackRef, error)

	// RegisterReadOnly fires in the current timestep's read-only phase.
	RegisterReadOnly(user uint64) (CallbackRef, error)

	// RegisterReadWrite fires in the current timestep's read-write
	// synchronization phase.
	RegisterReadWrite(user uint64) (CallbackRef, error)

	// RegisterNextTime fires at the start of the next timestep.
	RegisterNextTime(user uint64) (CallbackRef, error)

	// RegisterStartOfSim fires when simulation time starts.
	RegisterStartOfSim(user uint64) (CallbackRef, error)

	// RegisterEndOfSim fires when the simulation ends.
	RegisterEndOfSim(user uint64) (CallbackRef, error)

	// Cancel removes a pending registration.
	Cancel(ref CallbackRef) error
}

// Diagnoser exposes the backend's own diagnostic channel. Queried and
// re-logged immediately after any operation that may have set it.
type Diagnoser interface {
	Diag() (code int, msg string)
}

// Backend is the full capability surface of one vendor procedural
// interface binding.
type Backend interface {
	Introspector
	Valuer
	Scheduler
	Diagnoser

	// Name identifies the backend for diagnostics.
	Name() string

	// Policy reports the backend's callback cleanup convention.
	Policy() CleanupPolicy
}
