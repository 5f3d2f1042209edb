package pager

import "math"

// Default gesture tuning, in layout units.
const (
	// WheelSensitivity scales wheel deltas.
	WheelSensitivity = 0.9
	// TouchSensitivity scales drag distances.
	TouchSensitivity = 0.9
	// MinimumTouch is the smallest drag step that scrolls.
	MinimumTouch = 5.0
)

// Key is a navigation key understood by the Scroller.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// ParseKey maps DOM-style and terminal key names to a Key.
func ParseKey(name string) Key {
	switch name {
	case "ArrowUp", "up":
		return KeyUp
	case "ArrowDown", "down":
		return KeyDown
	case "ArrowLeft", "left":
		return KeyLeft
	case "ArrowRight", "right":
		return KeyRight
	}
	return KeyNone
}

// Scroller owns the scroll offset. Every input channel goes through one
// clamped update so the offset always stays within [0, MaxOffset()].
// It is not safe for concurrent use; hosts drive it from one goroutine.
type Scroller struct {
	WheelSensitivity float64
	TouchSensitivity float64
	MinimumTouch     float64

	offset    float64
	rowHeight float64
	pageSize  int
	length    int

	touchY   float64
	touching bool
}

// NewScroller creates a scroller over a sequence of length items.
func NewScroller(length, pageSize int, rowHeight float64) *Scroller {
	if rowHeight <= 0 {
		rowHeight = 1
	}
	return &Scroller{
		WheelSensitivity: WheelSensitivity,
		TouchSensitivity: TouchSensitivity,
		MinimumTouch:     MinimumTouch,
		rowHeight:        rowHeight,
		pageSize:         max(pageSize, 0),
		length:           max(length, 0),
	}
}

// Offset returns the current scroll offset.
func (s *Scroller) Offset() float64 { return s.offset }

// RowHeight returns the row height the offset is measured in.
func (s *Scroller) RowHeight() float64 { return s.rowHeight }

// PageSize returns the current page length.
func (s *Scroller) PageSize() int { return s.pageSize }

// Length returns the sequence length.
func (s *Scroller) Length() int { return s.length }

// MaxOffset is max(0, (length-pageSize)*rowHeight).
func (s *Scroller) MaxOffset() float64 {
	return math.Max(0, float64(s.length-s.pageSize)*s.rowHeight)
}

// Resize updates the bounds and re-clamps the current offset.
func (s *Scroller) Resize(length, pageSize int) {
	s.length = max(length, 0)
	s.pageSize = max(pageSize, 0)
	s.set(s.offset)
}

// Reset moves back to the top and forgets any drag in progress.
func (s *Scroller) Reset() {
	s.offset = 0
	s.touching = false
}

func (s *Scroller) set(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.offset = math.Min(s.MaxOffset(), math.Max(0, v))
}

func (s *Scroller) add(delta float64) { s.set(s.offset + delta) }

// Wheel applies a wheel event.
func (s *Scroller) Wheel(deltaY float64) {
	s.add(deltaY * s.WheelSensitivity)
}

// TouchStart records where a drag began.
func (s *Scroller) TouchStart(y float64) {
	s.touchY = y
	s.touching = true
}

// TouchMove applies an incremental drag. Movements below the minimum are
// ignored so jitter does not scroll. It reports whether the offset moved.
func (s *Scroller) TouchMove(y float64) bool {
	if !s.touching {
		return false
	}
	delta := (s.touchY - y) * s.TouchSensitivity
	if math.Abs(delta) <= s.MinimumTouch {
		return false
	}
	s.add(delta)
	s.touchY = y
	return true
}

// TouchEnd finishes a drag.
func (s *Scroller) TouchEnd() {
	s.touching = false
}

// Dragging reports whether a drag is in progress. Hosts suppress scrolling
// of the surrounding document while it is true.
func (s *Scroller) Dragging() bool { return s.touching }

// Key applies an arrow key. It returns true when the key was consumed and the
// host should suppress its default handling.
func (s *Scroller) Key(k Key) bool {
	page := float64(s.pageSize) * s.rowHeight
	switch k {
	case KeyUp:
		s.add(-s.rowHeight)
	case KeyDown:
		s.add(s.rowHeight)
	case KeyLeft:
		s.add(-page)
	case KeyRight:
		s.add(page)
	default:
		return false
	}
	return true
}

// NextPage advances by one full page.
func (s *Scroller) NextPage() {
	s.add(float64(s.pageSize) * s.rowHeight)
}
