// Package display implements the live preview sink that workers blit
// finished tiles into while an image is being processed.
package display

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/time/rate"

	"github.com/wbrown/tilize"
)

// Presenter shows a frame. The frame is only valid for the duration of the
// call and must not be retained.
type Presenter interface {
	Present(frame *tilize.PixelBuffer) error
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(frame *tilize.PixelBuffer) error

// Present calls f(frame).
func (f PresenterFunc) Present(frame *tilize.PixelBuffer) error {
	return f(frame)
}

// Sink is a framebuffer shared by all workers. Pixel writes are serialized
// by one mutex and presents by another, so a worker can keep blitting while
// an earlier frame is still being shown.
type Sink struct {
	mu    sync.Mutex
	frame *tilize.PixelBuffer

	presentMu sync.Mutex
	snapshot  *tilize.PixelBuffer
	presenter Presenter
	limiter   *rate.Limiter
	metrics   *tilize.Metrics
}

var _ tilize.DisplaySink = (*Sink)(nil)

// Option configures a Sink.
type Option func(*Sink)

// WithMaxFPS limits opportunistic presents to fps frames per second.
// Zero or negative means unlimited.
func WithMaxFPS(fps float64) Option {
	return func(s *Sink) {
		if fps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(fps), 1)
	}
}

// WithMetrics counts presented and dropped frames.
func WithMetrics(m *tilize.Metrics) Option {
	return func(s *Sink) {
		s.metrics = m
	}
}

// DefaultMaxFPS is the present rate used unless WithMaxFPS overrides it.
const DefaultMaxFPS = 30

// NewSink creates a black width x height framebuffer presented through p.
func NewSink(width, height int, p Presenter, opts ...Option) (*Sink, error) {
	frame, err := tilize.NewPixelBuffer(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate display frame: %w", err)
	}
	s := &Sink{
		frame:     frame,
		snapshot:  frame.Clone(),
		presenter: p,
		limiter:   rate.NewLimiter(DefaultMaxFPS, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Blit copies tile into the frame with its top-left corner at (x, y).
// Pixels outside the frame are clipped.
func (s *Sink) Blit(x, y int, tile *tilize.PixelBuffer) {
	if tile == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	x0, y0 := max(x, 0), max(y, 0)
	x1 := min(x+tile.Width, s.frame.Width)
	y1 := min(y+tile.Height, s.frame.Height)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	for py := y0; py < y1; py++ {
		src := tile.Pix[(py-y)*tile.Width+(x0-x) : (py-y)*tile.Width+(x1-x)]
		copy(s.frame.Pix[py*s.frame.Width+x0:], src)
	}
}

// Present shows the current frame unless a present is already in flight or
// the rate limit has been reached, in which case the frame is skipped and
// Present returns false. It never waits for another present.
func (s *Sink) Present() bool {
	if !s.presentMu.TryLock() {
		s.metrics.FrameDropped()
		return false
	}
	defer s.presentMu.Unlock()

	if s.limiter != nil && !s.limiter.Allow() {
		s.metrics.FrameDropped()
		return false
	}
	s.show()
	return true
}

// Flush waits for any in-flight present and then shows the current frame.
// It ignores the rate limit and is meant for the final frame of a run.
func (s *Sink) Flush() {
	s.presentMu.Lock()
	defer s.presentMu.Unlock()
	s.show()
}

// show must be called with presentMu held.
func (s *Sink) show() {
	s.mu.Lock()
	copy(s.snapshot.Pix, s.frame.Pix)
	s.mu.Unlock()

	if err := s.presenter.Present(s.snapshot); err != nil {
		tilize.Logger().Warn("present failed", "error", err)
		return
	}
	s.metrics.FramePresented()
}

// Frame returns a copy of the current framebuffer.
func (s *Sink) Frame() *tilize.PixelBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame.Clone()
}

// Terminal presents frames as ANSI half-block art on a writer.
type Terminal struct {
	w    io.Writer
	cols int
}

// NewTerminal returns a presenter that redraws w from the top-left corner,
// fitting the frame into cols columns when cols is positive.
func NewTerminal(w io.Writer, cols int) *Terminal {
	return &Terminal{w: w, cols: cols}
}

// Present redraws the frame.
func (t *Terminal) Present(frame *tilize.PixelBuffer) error {
	_, err := io.WriteString(t.w, Home+RenderANSI(frame, t.cols))
	return err
}
