package loader

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sevigo/pocket-points/internal/imaging"
)

// fakeSurface records what a slot displays; a nil image means the default.
type fakeSurface struct {
	mu       sync.Mutex
	img      image.Image
	defaults int
	writes   int
}

func (s *fakeSurface) SetImage(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = img
	s.writes++
}

func (s *fakeSurface) SetDefaultImage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = nil
	s.defaults++
}

func (s *fakeSurface) current() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

func (s *fakeSurface) counts() (defaults, writes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaults, s.writes
}

// fakeDecoder returns a fixed image per locator and fails for unknown locators.
type fakeDecoder struct {
	mu       sync.Mutex
	images   map[string]image.Image
	calls    map[string]int
	maxDelay time.Duration
}

func newFakeDecoder(locators ...string) *fakeDecoder {
	d := &fakeDecoder{
		images: make(map[string]image.Image),
		calls:  make(map[string]int),
	}
	for _, l := range locators {
		d.images[l] = image.NewRGBA(image.Rect(0, 0, 100, 100))
	}
	return d
}

func (d *fakeDecoder) Decode(ctx context.Context, locator string, _, _ int) (image.Image, error) {
	d.mu.Lock()
	d.calls[locator]++
	img, ok := d.images[locator]
	delay := d.maxDelay
	d.mu.Unlock()

	if delay > 0 {
		time.Sleep(rand.N(delay))
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", imaging.ErrDecode, locator)
	}
	return img, nil
}

func (d *fakeDecoder) callCount(locator string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[locator]
}

// manualExecutor holds submitted tasks until the test runs them, in any order.
type manualExecutor struct {
	mu    sync.Mutex
	tasks []func()
	err   error
}

func (e *manualExecutor) Submit(task func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.tasks = append(e.tasks, task)
	return nil
}

func (e *manualExecutor) len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

func (e *manualExecutor) run(i int) {
	e.mu.Lock()
	task := e.tasks[i]
	e.mu.Unlock()
	task()
}

func (e *manualExecutor) runAll() {
	for i := range e.len() {
		e.run(i)
	}
}
