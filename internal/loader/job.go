package loader

import (
	"context"
	"sync/atomic"
	"weak"
)

// State is the completion state of a Job.
type State int32

const (
	StatePending State = iota
	StateSucceeded
	StateFailed
	StateSuperseded
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Job is a single decode attempt for one slot. Its identity, not its locator,
// decides whether it may write into the slot.
type Job struct {
	id      uint64
	locator string
	slot    weak.Pointer[Slot]
	state   atomic.Int32
	cancel  context.CancelFunc
}

func newJob(id uint64, locator string, slot *Slot, cancel context.CancelFunc) *Job {
	return &Job{
		id:      id,
		locator: locator,
		slot:    weak.Make(slot),
		cancel:  cancel,
	}
}

// ID returns the job's unique identity.
func (j *Job) ID() uint64 { return j.id }

// Locator returns the image locator the job decodes.
func (j *Job) Locator() string { return j.locator }

// State returns the job's current state.
func (j *Job) State() State { return State(j.state.Load()) }

// target resolves the slot without keeping it alive. It returns nil once the
// slot has been collected or released.
func (j *Job) target() *Slot {
	s := j.slot.Value()
	if s == nil || s.Released() {
		return nil
	}
	return s
}

// finish moves a pending job into a terminal state. Terminal states never change,
// so it reports false if the job had already left pending.
func (j *Job) finish(to State) bool {
	return j.state.CompareAndSwap(int32(StatePending), int32(to))
}

// supersede marks the job stale and asks its decode to stop early.
func (j *Job) supersede() bool {
	ok := j.finish(StateSuperseded)
	if ok && j.cancel != nil {
		j.cancel()
	}
	return ok
}
