package loader

import (
	"sync/atomic"

	"github.com/sevigo/pocket-points/internal/core"
)

// Slot is one reusable display position, typically a list row. The UI owns it;
// the coordinator only reads and writes the job bound to it.
type Slot struct {
	surface  core.Surface
	job      *Job // Guarded by the owning Coordinator's mutex.
	released atomic.Bool
}

// NewSlot creates a slot that displays into surface.
func NewSlot(surface core.Surface) *Slot {
	return &Slot{surface: surface}
}

// Release marks the slot as discarded by the UI. A job still in flight for it will
// complete without touching its surface.
func (s *Slot) Release() {
	s.released.Store(true)
}

// Released reports whether Release has been called.
func (s *Slot) Released() bool {
	return s.released.Load()
}

// Surface returns the display surface the slot writes into.
func (s *Slot) Surface() core.Surface {
	return s.surface
}
