package pager

import (
	"math"
	"sync"
)

const (
	// HeaderHeight is the space above the first row, in layout units.
	HeaderHeight = 70
	// MinimumPageSize keeps small viewports usable.
	MinimumPageSize = 3
)

// PageSize returns how many rows fit below the header, keeping one row spare
// and never going under minimum.
func PageSize(viewportHeight, rowHeight, headerHeight float64, minimum int) int {
	if rowHeight <= 0 {
		return minimum
	}
	rows := int(math.Floor((viewportHeight-headerHeight)/rowHeight)) - 1
	return max(minimum, rows)
}

// Viewport reports its height and notifies subscribers when it changes.
type Viewport interface {
	Height() float64
	Subscribe(fn func()) (unsubscribe func())
}

// Screen is a Viewport whose height is pushed by the host, for example from
// terminal resize events.
type Screen struct {
	mu     sync.Mutex
	height float64
	next   int
	subs   map[int]func()
}

// NewScreen creates a Screen with an initial height.
func NewScreen(height float64) *Screen {
	return &Screen{height: height, subs: map[int]func(){}}
}

func (s *Screen) Height() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

// Subscribe registers fn for resize notifications.
func (s *Screen) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Resize stores the new height and notifies subscribers when it changed.
func (s *Screen) Resize(height float64) {
	s.mu.Lock()
	if height == s.height {
		s.mu.Unlock()
		return
	}
	s.height = height
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Estimator keeps the page size in step with a viewport for the lifetime of
// a session.
type Estimator struct {
	RowHeight    float64
	HeaderHeight float64
	Minimum      int

	vp          Viewport
	mu          sync.Mutex
	size        int
	unsubscribe func()
}

// NewEstimator computes the initial page size for vp.
func NewEstimator(vp Viewport, rowHeight, headerHeight float64, minimum int) *Estimator {
	e := &Estimator{RowHeight: rowHeight, HeaderHeight: headerHeight, Minimum: minimum, vp: vp}
	e.size = e.compute()
	return e
}

func (e *Estimator) compute() int {
	return PageSize(e.vp.Height(), e.RowHeight, e.HeaderHeight, e.Minimum)
}

// PageSize returns the latest computed page size.
func (e *Estimator) PageSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

// Start subscribes to resize notifications; onChange is called with the new
// page size whenever it differs from the previous one.
func (e *Estimator) Start(onChange func(pageSize int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.unsubscribe != nil {
		return
	}
	e.unsubscribe = e.vp.Subscribe(func() {
		size := e.compute()
		e.mu.Lock()
		changed := size != e.size
		e.size = size
		e.mu.Unlock()
		if changed && onChange != nil {
			onChange(size)
		}
	})
}

// Close unsubscribes from the viewport.
func (e *Estimator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}
