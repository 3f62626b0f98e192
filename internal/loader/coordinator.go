// Package loader binds asynchronously decoded images into recyclable display slots.
//
// A Coordinator guarantees that each slot has at most one pending decode, that a
// superseded decode never writes into its slot, and that a slot discarded while its
// decode is in flight is neither written to nor kept alive by that decode.
package loader

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/sevigo/pocket-points/internal/core"
)

// Coordinator decides when a slot needs a new decode, retires stale ones and
// applies results only while they are still authoritative for their slot.
type Coordinator struct {
	decoder  core.Decoder
	executor core.Executor
	poster   core.Poster
	width    int
	height   int
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// mu guards the binding table (the job field of every Slot) and makes both the
	// bind sequence in RequestLoad and the check-then-write in complete atomic.
	mu     sync.Mutex
	nextID uint64

	stats counters
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPoster routes completion callbacks onto the context that owns the slot
// surfaces. By default they run on the worker that finished the decode.
func WithPoster(p core.Poster) Option {
	return func(c *Coordinator) {
		if p != nil {
			c.poster = p
		}
	}
}

// NewCoordinator creates a coordinator that decodes with decoder on executor, asking
// for images close to width x height.
func NewCoordinator(decoder core.Decoder, executor core.Executor, width, height int, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		decoder:  decoder,
		executor: executor,
		poster:   core.PostFunc(func(fn func()) { fn() }),
		width:    width,
		height:   height,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestLoad shows the image at locator in slot. An empty locator shows the
// default image without decoding. A request identical to the slot's pending job is
// ignored; any other pending job for the slot is superseded. RequestLoad never
// blocks on I/O and never fails observably: decode errors leave the default image.
//
// Surface methods are invoked while the coordinator's lock is held, so surfaces
// must not call back into the Coordinator.
func (c *Coordinator) RequestLoad(locator string, slot *Slot) {
	if slot == nil {
		return
	}
	if locator == "" {
		c.showDefault(slot)
		return
	}
	c.stats.requested.Add(1)

	c.mu.Lock()
	cur := slot.job
	if cur != nil && cur.locator == locator && cur.State() == StatePending {
		c.mu.Unlock()
		c.stats.deduplicated.Add(1)
		return
	}
	c.retire(cur)

	c.nextID++
	ctx, cancel := context.WithCancel(c.ctx)
	job := newJob(c.nextID, locator, slot, cancel)
	slot.job = job
	slot.surface.SetDefaultImage()
	c.mu.Unlock()

	c.dispatch(ctx, job)
}

// showDefault clears the slot's binding and displays the default image.
func (c *Coordinator) showDefault(slot *Slot) {
	c.stats.defaulted.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.retire(slot.job)
	slot.job = nil
	slot.surface.SetDefaultImage()
}

// retire supersedes job if it is still pending. Caller holds mu.
func (c *Coordinator) retire(job *Job) {
	if job == nil || !job.supersede() {
		return
	}
	c.stats.superseded.Add(1)
	c.logger.Debug("superseded pending decode", "job_id", job.id, "locator", job.locator)
}

// dispatch hands the decode to the executor. The task captures the job only; the
// job reaches its slot through a weak pointer.
func (c *Coordinator) dispatch(ctx context.Context, job *Job) {
	task := func() {
		img, err := c.decoder.Decode(ctx, job.locator, c.width, c.height)
		c.poster.Post(func() { c.complete(job, img, err) })
	}

	c.stats.dispatched.Add(1)
	if err := c.executor.Submit(task); err != nil {
		c.stats.dispatched.Add(^uint64(0))
		c.stats.rejected.Add(1)
		job.finish(StateFailed)
		job.cancel()
		c.logger.Warn("decode could not be scheduled, keeping default image",
			"job_id", job.id,
			"locator", job.locator,
			"error", err,
		)
	}
}

// complete applies a finished decode if, and only if, job is still the
// authoritative job of a live slot.
func (c *Coordinator) complete(job *Job, img image.Image, err error) {
	defer job.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	slot := job.target()
	switch {
	case job.State() == StateSuperseded:
		c.discard(job, "superseded")
		return
	case slot == nil:
		job.finish(StateSuperseded)
		c.discard(job, "slot released")
		return
	case slot.job != job:
		job.finish(StateSuperseded)
		c.discard(job, "slot rebound")
		return
	}

	if err == nil && img == nil {
		err = errNoImage
	}
	if err != nil {
		if job.finish(StateFailed) {
			c.stats.failed.Add(1)
		}
		c.logger.Debug("decode failed, keeping default image",
			"job_id", job.id,
			"locator", job.locator,
			"error", err,
		)
		return
	}

	if !job.finish(StateSucceeded) {
		c.discard(job, "already finished")
		return
	}
	slot.surface.SetImage(img)
	c.stats.applied.Add(1)
}

func (c *Coordinator) discard(job *Job, reason string) {
	c.stats.discarded.Add(1)
	c.logger.Debug("discarding decode result", "job_id", job.id, "locator", job.locator, "reason", reason)
}

// Current returns the job bound to slot, or nil.
func (c *Coordinator) Current(slot *Slot) *Job {
	if slot == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return slot.job
}

// Stats returns a snapshot of the coordinator's counters.
func (c *Coordinator) Stats() Stats {
	return c.stats.snapshot()
}

// Close cancels the context of every in-flight decode. Decodes that honor it
// complete as failures and leave the default image in place.
func (c *Coordinator) Close() {
	c.cancel()
}
