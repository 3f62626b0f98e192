// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"context"
	"image"
)

// Executor defines the contract for a system that can accept and run background
// tasks off the calling goroutine. It decouples the thumbnail coordinator from the
// worker pool that actually performs the decodes.
type Executor interface {
	// Submit queues a task for asynchronous execution. It returns an error if
	// the task cannot be accepted, for example, if the queue is full, providing
	// a mechanism for backpressure. Submit must not block.
	Submit(task func()) error
}

// ExecutorFunc adapts an ordinary function to the Executor interface.
// ExecutorFunc(func(task func()) error { task(); return nil }) runs every task
// synchronously on the caller, which is what tests substitute for the pool.
type ExecutorFunc func(task func()) error

// Submit calls f(task).
func (f ExecutorFunc) Submit(task func()) error {
	return f(task)
}

// Poster schedules a callback onto the context that owns display surfaces,
// such as the UI's single update loop.
type Poster interface {
	Post(fn func())
}

// PostFunc adapts an ordinary function to the Poster interface.
type PostFunc func(fn func())

// Post calls f(fn).
func (f PostFunc) Post(fn func()) {
	f(fn)
}

// Decoder turns an image locator into a raster scaled down for display.
// Implementations must be stateless and safe for concurrent use.
type Decoder interface {
	// Decode reads the image at locator and downsamples it by an integral
	// factor so that it stays close to width x height without upscaling or
	// distorting the aspect ratio.
	Decode(ctx context.Context, locator string, width, height int) (image.Image, error)
}

// Surface is the display target of a list row. Both setters are side-effect only,
// idempotent and must not block.
type Surface interface {
	SetImage(img image.Image)
	SetDefaultImage()
}
