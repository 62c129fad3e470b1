// Package preview decides when to ask the external compositing collaborator
// for a fresh preview and how to apply results that may arrive out of order.
// The renderer itself is opaque: this package never composites pixels.
package preview

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"billboard-studio/internal/frame"
	"billboard-studio/internal/photo"
	"billboard-studio/pkg/geometry"
)

// DefaultDebounce is how long the configuration must be stable before a
// render request goes out.
const DefaultDebounce = 400 * time.Millisecond

// Request carries everything the external renderer needs to composite a
// creative onto one frame.
type Request struct {
	Base     photo.Raster
	Creative photo.Raster
	Frame    geometry.Quad
	Config   frame.AppearanceConfig
}

// requestKey is the comparable part of a Request used for duplicate
// suppression. Raster contents are not compared; callers invalidate
// explicitly when the base or creative raster changes.
type requestKey struct {
	Frame  geometry.Quad
	Config frame.AppearanceConfig
}

// Renderer is the external compositing collaborator.
type Renderer interface {
	RenderPreview(ctx context.Context, req Request) (image.Image, error)
}

// Scheduler debounces preview requests and applies results with a
// last-applied-wins rule: an in-flight render is never cancelled, its result
// is still applied when it arrives unless a newer result already landed.
// Callers must tolerate a stale preview occasionally flashing before the
// newest one replaces it.
type Scheduler struct {
	renderer Renderer
	apply    func(image.Image)
	debounce time.Duration
	logger   *slog.Logger

	mu          sync.Mutex
	timer       *time.Timer
	pending     Request
	hasPending  bool
	lastSent    requestKey
	hasLastSent bool
	seq         uint64
	applied     uint64
	closed      bool
}

// NewScheduler creates a scheduler delivering rendered previews to apply.
// A zero debounce selects DefaultDebounce; a nil logger uses slog's default.
// apply runs with scheduler state held and must not call back into the
// scheduler; hand the image to the UI thread and return.
func NewScheduler(r Renderer, apply func(image.Image), debounce time.Duration, logger *slog.Logger) *Scheduler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		renderer: r,
		apply:    apply,
		debounce: debounce,
		logger:   logger,
	}
}

// Update notes the latest desired preview. The request is dispatched once it
// has been stable for the debounce window and differs from the last one sent.
func (s *Scheduler) Update(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = req
	s.hasPending = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flush)
}

// Invalidate forgets the last-sent request, forcing the next Update through
// duplicate suppression. Called when the base photo or creative changes.
func (s *Scheduler) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasLastSent = false
}

// Close stops the pending timer. In-flight renders finish but their results
// are dropped.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Scheduler) flush() {
	s.mu.Lock()
	if s.closed || !s.hasPending {
		s.mu.Unlock()
		return
	}
	req := s.pending
	key := requestKey{Frame: req.Frame, Config: req.Config}
	if s.hasLastSent && key == s.lastSent {
		s.mu.Unlock()
		return
	}
	s.lastSent = key
	s.hasLastSent = true
	s.hasPending = false
	s.seq++
	ticket := s.seq
	s.mu.Unlock()

	go s.render(req, key, ticket)
}

func (s *Scheduler) render(req Request, key requestKey, ticket uint64) {
	img, err := s.renderer.RenderPreview(context.Background(), req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		// Recoverable: clear duplicate suppression so the same request
		// can be retried, and never touch applied state.
		s.logger.Warn("preview render failed", "error", err)
		if s.lastSent == key {
			s.hasLastSent = false
		}
		return
	}
	if ticket <= s.applied {
		// A newer preview already landed; drop this stale result.
		return
	}
	s.applied = ticket
	if s.apply != nil {
		s.apply(img)
	}
}
