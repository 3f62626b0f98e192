package loader

import "sync/atomic"

// Stats is a snapshot of the coordinator's counters.
type Stats struct {
	Requested    uint64 // RequestLoad calls with a non-empty locator.
	Defaulted    uint64 // RequestLoad calls with an empty locator.
	Deduplicated uint64 // Requests satisfied by an identical pending job.
	Superseded   uint64 // Pending jobs retired by a newer request.
	Dispatched   uint64 // Jobs accepted by the executor.
	Rejected     uint64 // Jobs the executor refused.
	Applied      uint64 // Results written into a slot.
	Discarded    uint64 // Results dropped as stale or for a dead slot.
	Failed       uint64 // Decodes that failed while still authoritative.
}

// Pending is the number of dispatched jobs that have not been accounted for yet.
func (s Stats) Pending() uint64 {
	done := s.Applied + s.Discarded + s.Failed
	if done >= s.Dispatched {
		return 0
	}
	return s.Dispatched - done
}

type counters struct {
	requested, defaulted, deduplicated, superseded atomic.Uint64
	dispatched, rejected, applied, discarded       atomic.Uint64
	failed                                         atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Requested:    c.requested.Load(),
		Defaulted:    c.defaulted.Load(),
		Deduplicated: c.deduplicated.Load(),
		Superseded:   c.superseded.Load(),
		Dispatched:   c.dispatched.Load(),
		Rejected:     c.rejected.Load(),
		Applied:      c.applied.Load(),
		Discarded:    c.discarded.Load(),
		Failed:       c.failed.Load(),
	}
}
