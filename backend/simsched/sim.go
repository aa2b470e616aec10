package simsched

import (
	"sort"

	"github.com/hdlbridge/gpi/backend"
	"github.com/hdlbridge/gpi/errors"
)

// Diagnostic codes reported through the Diag channel.
const (
	diagNone        = 0
	diagBadHandle   = 1
	diagBadValue    = 2
	diagNotForced   = 3
	diagUnsupported = 4
	diagNoSuchReg   = 5
	diagCancelDeny  = 6
	diagNoEntry     = 7
	diagEnded       = 8
)

type regKind uint8

const (
	regTimed regKind = iota
	regValueChange
	regReadOnly
	regReadWrite
	regNextTime
	regStartOfSim
	regEndOfSim
)

type registration struct {
	kind   regKind
	user   uint64
	due    uint64            // timed only
	signal backend.ObjectRef // value-change only
	valid  bool
}

// Sim is an in-memory discrete-event scheduler backend. It drives the
// four in-timestep phases (value-change, read-write, read-only) plus
// next-timestep, timed, and start/end-of-simulation events, and models
// the immediate-reaction quirk of simulators that fire value-change
// callbacks synchronously inside a signal write.
type Sim struct {
	name   string
	policy backend.CleanupPolicy

	entry backend.EntryFunc

	objects []*object
	root    backend.ObjectRef

	regs     []*registration
	freeRegs []backend.CallbackRef

	timers    []backend.CallbackRef // kept sorted by due time, stable
	readWrite []backend.CallbackRef
	readOnly  []backend.CallbackRef
	nextTime  []backend.CallbackRef
	startRegs []backend.CallbackRef
	endRegs   []backend.CallbackRef

	pendingVC []backend.CallbackRef

	now     uint64
	started bool
	ended   bool

	immediate  bool
	denyCancel bool

	diagCode int
	diagMsg  string
}

// Option configures a Sim.
type Option func(*Sim)

// WithPolicy sets the callback cleanup convention the backend reports.
func WithPolicy(p backend.CleanupPolicy) Option {
	return func(s *Sim) { s.policy = p }
}

// WithImmediateReaction makes signal writes fire matching value-change
// registrations synchronously inside the write, before the writing
// callback has returned.
func WithImmediateReaction() Option {
	return func(s *Sim) { s.immediate = true }
}

// New creates an empty simulator.
func New(name string, opts ...Option) *Sim {
	s := &Sim{name: name, policy: backend.InlineDelete}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sim) Name() string {
	return s.name
}

func (s *Sim) Policy() backend.CleanupPolicy {
	return s.policy
}

// DenyCancel makes every subsequent Cancel fail, for exercising the
// removal-failure path.
func (s *Sim) DenyCancel(deny bool) {
	s.denyCancel = deny
}

// Now returns the current simulation time.
func (s *Sim) Now() uint64 {
	return s.now
}

func (s *Sim) setDiag(code int, msg string) {
	s.diagCode = code
	s.diagMsg = msg
}

func (s *Sim) Diag() (int, string) {
	return s.diagCode, s.diagMsg
}

// Scheduler implementation

func (s *Sim) SetEntry(entry backend.EntryFunc) {
	s.entry = entry
}

func (s *Sim) newReg(r *registration) backend.CallbackRef {
	r.valid = true
	if n := len(s.freeRegs); n > 0 {
		ref := s.freeRegs[n-1]
		s.freeRegs = s.freeRegs[:n-1]
		s.regs[ref-1] = r
		return ref
	}
	s.regs = append(s.regs, r)
	return backend.CallbackRef(len(s.regs))
}

func (s *Sim) reg(ref backend.CallbackRef) *registration {
	if ref == 0 || int(ref) > len(s.regs) {
		return nil
	}
	r := s.regs[ref-1]
	if r == nil || !r.valid {
		return nil
	}
	return r
}

func (s *Sim) checkReg() error {
	if s.entry == nil {
		s.setDiag(diagNoEntry, "no entry function installed")
		return errors.InvalidInput(errors.PhaseArm, "no entry function installed")
	}
	if s.ended {
		s.setDiag(diagEnded, "registration after end of simulation")
		return errors.InvalidInput(errors.PhaseArm, "registration after end of simulation")
	}
	return nil
}

func (s *Sim) RegisterTimed(delay uint64, user uint64) (backend.CallbackRef, error) {
	if err := s.checkReg(); err != nil {
		return 0, err
	}
	ref := s.newReg(&registration{kind: regTimed, user: user, due: s.now + delay})
	s.timers = append(s.timers, ref)
	sort.SliceStable(s.timers, func(i, j int) bool {
		return s.reg(s.timers[i]).due < s.reg(s.timers[j]).due
	})
	return ref, nil
}

func (s *Sim) RegisterValueChange(sig backend.ObjectRef, user uint64) (backend.CallbackRef, error) {
	if err := s.checkReg(); err != nil {
		return 0, err
	}
	o := s.obj(sig)
	if o == nil || o.kind != backend.KindSignal {
		s.setDiag(diagBadHandle, "value-change registration on non-signal")
		return 0, errors.BackendReject(errors.PhaseArm, "value-change registration", diagBadHandle, "not a signal")
	}
	ref := s.newReg(&registration{kind: regValueChange, user: user, signal: sig})
	o.watchers = append(o.watchers, ref)
	return ref, nil
}

func (s *Sim) RegisterReadOnly(user uint64) (backend.CallbackRef, error) {
	if err := s.checkReg(); err != nil {
		return 0, err
	}
	ref := s.newReg(&registration{kind: regReadOnly, user: user})
	s.readOnly = append(s.readOnly, ref)
	return ref, nil
}

func (s *Sim) RegisterReadWrite(user uint64) (backend.CallbackRef, error) {
	if err := s.checkReg(); err != nil {
		return 0, err
	}
	ref := s.newReg(&registration{kind: regReadWrite, user: user})
	s.readWrite = append(s.readWrite, ref)
	return ref, nil
}

func (s *Sim) RegisterNextTime(user uint64) (backend.CallbackRef, error) {
	if err := s.checkReg(); err != nil {
		return 0, err
	}
	ref := s.newReg(&registration{kind: regNextTime, user: user})
	s.nextTime = append(s.nextTime, ref)
	return ref, nil
}

func (s *Sim) RegisterStartOfSim(user uint64) (backend.CallbackRef, error) {
	if err := s.checkReg(); err != nil {
		return 0, err
	}
	ref := s.newReg(&registration{kind: regStartOfSim, user: user})
	s.startRegs = append(s.startRegs, ref)
	return ref, nil
}

func (s *Sim) RegisterEndOfSim(user uint64) (backend.CallbackRef, error) {
	if s.entry == nil {
		s.setDiag(diagNoEntry, "no entry function installed")
		return 0, errors.InvalidInput(errors.PhaseArm, "no entry function installed")
	}
	ref := s.newReg(&registration{kind: regEndOfSim, user: user})
	s.endRegs = append(s.endRegs, ref)
	return ref, nil
}

func (s *Sim) Cancel(ref backend.CallbackRef) error {
	if s.denyCancel {
		s.setDiag(diagCancelDeny, "cancellation refused by simulator")
		return errors.BackendReject(errors.PhaseRemove, "cancel registration", diagCancelDeny, "cancellation refused by simulator")
	}
	r := s.reg(ref)
	if r == nil {
		s.setDiag(diagNoSuchReg, "no such registration")
		return errors.BackendReject(errors.PhaseRemove, "cancel registration", diagNoSuchReg, "no such registration")
	}
	s.dropReg(ref, r)
	return nil
}

// dropReg invalidates a registration and unlinks it from its structure.
func (s *Sim) dropReg(ref backend.CallbackRef, r *registration) {
	r.valid = false
	switch r.kind {
	case regTimed:
		s.timers = remove(s.timers, ref)
	case regValueChange:
		if o := s.obj(r.signal); o != nil {
			o.watchers = remove(o.watchers, ref)
		}
		s.pendingVC = remove(s.pendingVC, ref)
	case regReadOnly:
		s.readOnly = remove(s.readOnly, ref)
	case regReadWrite:
		s.readWrite = remove(s.readWrite, ref)
	case regNextTime:
		s.nextTime = remove(s.nextTime, ref)
	case regStartOfSim:
		s.startRegs = remove(s.startRegs, ref)
	case regEndOfSim:
		s.endRegs = remove(s.endRegs, ref)
	}
	s.freeRegs = append(s.freeRegs, ref)
}

func remove(refs []backend.CallbackRef, ref backend.CallbackRef) []backend.CallbackRef {
	for i, r := range refs {
		if r == ref {
			return append(refs[:i], refs[i+1:]...)
		}
	}
	return refs
}

// fireOneShot consumes the registration and invokes the entry function.
func (s *Sim) fireOneShot(ref backend.CallbackRef) {
	r := s.reg(ref)
	if r == nil {
		return
	}
	user := r.user
	s.dropReg(ref, r)
	s.entry(user)
}

// fireRecurring invokes the entry function without consuming the
// registration. Value-change registrations stay armed until cancelled.
func (s *Sim) fireRecurring(ref backend.CallbackRef) {
	r := s.reg(ref)
	if r == nil {
		return
	}
	s.entry(r.user)
}

// notifyChange is called by the value layer when a signal's effective
// value changed.
func (s *Sim) notifyChange(o *object) {
	if s.immediate {
		// React synchronously inside the write, the quirk some
		// simulators exhibit with no-delay writes.
		watchers := make([]backend.CallbackRef, len(o.watchers))
		copy(watchers, o.watchers)
		for _, ref := range watchers {
			s.fireRecurring(ref)
		}
		return
	}
	for _, ref := range o.watchers {
		s.pendingVC = append(s.pendingVC, ref)
	}
}

func (s *Sim) drainValueChange() {
	for len(s.pendingVC) > 0 {
		ref := s.pendingVC[0]
		s.pendingVC = s.pendingVC[1:]
		s.fireRecurring(ref)
	}
}

func drain(s *Sim, queue *[]backend.CallbackRef) {
	for len(*queue) > 0 {
		ref := (*queue)[0]
		s.fireOneShot(ref)
		// fireOneShot unlinked the ref from the queue via dropReg.
	}
}

// Start fires the start-of-simulation registrations. Idempotent.
func (s *Sim) Start() {
	if s.started {
		return
	}
	s.started = true
	drain(s, &s.startRegs)
}

// Finish fires the end-of-simulation registrations and marks the
// simulation ended. Idempotent.
func (s *Sim) Finish() {
	if s.ended {
		return
	}
	s.ended = true
	drain(s, &s.endRegs)
}

// hasWork reports whether the current timestep has phase work pending.
func (s *Sim) hasWork() bool {
	return len(s.pendingVC) > 0 || len(s.readWrite) > 0 || len(s.readOnly) > 0
}

// processTimestep runs one timestep at time t: due timers, then the
// value-change notifications, the read-write synchronization phase, and
// the read-only phase.
func (s *Sim) processTimestep(t uint64) {
	s.now = t

	// Snapshot, so a registration made inside a next-time callback lands
	// in the following timestep rather than this drain.
	boundary := make([]backend.CallbackRef, len(s.nextTime))
	copy(boundary, s.nextTime)
	for _, ref := range boundary {
		s.fireOneShot(ref)
	}

	for len(s.timers) > 0 {
		r := s.reg(s.timers[0])
		if r == nil || r.due > t {
			break
		}
		s.fireOneShot(s.timers[0])
	}

	s.drainValueChange()

	for len(s.readWrite) > 0 {
		s.fireOneShot(s.readWrite[0])
		// Read-write callbacks may write; their notifications land in
		// this same timestep.
		s.drainValueChange()
	}

	for len(s.readOnly) > 0 {
		s.fireOneShot(s.readOnly[0])
	}
}

// Advance moves simulation time forward by units, processing every
// timestep with scheduled work along the way.
func (s *Sim) Advance(units uint64) {
	s.Start()
	target := s.now + units

	if s.hasWork() || len(s.nextTime) > 0 {
		s.processTimestep(s.now)
	}

	for {
		if len(s.timers) == 0 {
			break
		}
		r := s.reg(s.timers[0])
		if r == nil {
			s.timers = s.timers[1:]
			continue
		}
		if r.due > target {
			break
		}
		s.processTimestep(r.due)
	}

	// Chained next-time registrations walk forward one timestep per
	// fire, never past the advance target.
	for len(s.nextTime) > 0 && s.now < target {
		s.processTimestep(s.now + 1)
	}

	s.now = target
}

// Run advances until the given absolute time.
func (s *Sim) Run(until uint64) {
	if until <= s.now {
		return
	}
	s.Advance(until - s.now)
}

var _ backend.Backend = (*Sim)(nil)
