// Package study runs one learner's pass over a deck: the presentation
// sequence, scroll position, visible page and revealed answers.
package study

import (
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/pager"
)

// Options configures a study session.
type Options struct {
	BlockSize       int
	Policy          pager.Policy
	RevealMode      pager.Mode
	RowHeight       float64
	HeaderHeight    float64
	MinimumPageSize int
	// Flipped starts the session with prompt and answer swapped.
	Flipped bool
	Rand    *rand.Rand
}

// DefaultOptions matches the graphical layout: 38px rows under a 70px header.
func DefaultOptions() Options {
	return Options{
		BlockSize:       deck.DefaultBlockSize,
		Policy:          pager.Shrink,
		RevealMode:      pager.RevealOnly,
		RowHeight:       38,
		HeaderHeight:    pager.HeaderHeight,
		MinimumPageSize: pager.MinimumPageSize,
	}
}

// Row is one visible line of the current page.
type Row struct {
	Index    int
	Card     deck.Card
	Prompt   string
	Answer   string
	Revealed bool
	// Review marks the second showing of a card within its block.
	Review bool
}

// View is everything a host needs to draw the current page.
type View struct {
	Deck      string
	Rows      []Row
	Start     int
	End       int
	Total     int
	PageSize  int
	Page      int
	Pages     int
	Offset    float64
	MaxOffset float64
	Flipped   bool
	Dragging  bool
	Mode      pager.Mode
}

// Session is safe for concurrent use by a host's handlers.
type Session struct {
	ID string

	log  *zap.Logger
	opts Options

	mu        sync.Mutex
	deck      *deck.Deck
	repeater  *deck.Repeater
	seq       []deck.Card
	scroller  *pager.Scroller
	estimator *pager.Estimator
	tracker   *pager.Tracker
	flipped   bool
	closed    bool
}

// New starts a session over d, sizing pages from vp.
func New(d *deck.Deck, vp pager.Viewport, opts Options, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = 1
	}
	s := &Session{
		ID:       uuid.NewString(),
		opts:     opts,
		repeater: deck.NewRepeater(opts.BlockSize, opts.Rand),
		tracker:  pager.NewTracker(opts.RevealMode),
		flipped:  opts.Flipped,
	}
	s.log = log.With(zap.String("session", s.ID))
	s.estimator = pager.NewEstimator(vp, opts.RowHeight, opts.HeaderHeight, opts.MinimumPageSize)
	s.scroller = pager.NewScroller(0, s.estimator.PageSize(), opts.RowHeight)
	s.setDeck(d)
	s.estimator.Start(s.resize)
	return s
}

func (s *Session) resize(pageSize int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroller.Resize(len(s.seq), pageSize)
	s.log.Debug("Page size changed", zap.Int("page_size", pageSize))
}

// SetDeck replaces the deck. A different deck reshuffles, clears reveals and
// scrolls back to the top; passing the current deck again changes nothing.
func (s *Session) SetDeck(d *deck.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setDeck(d)
}

func (s *Session) setDeck(d *deck.Deck) {
	if !s.repeater.Changed(d) && s.seq != nil {
		return
	}
	s.deck = d
	s.seq = s.repeater.Sequence(d)
	s.tracker.Reset()
	s.scroller.Reset()
	s.scroller.Resize(len(s.seq), s.estimator.PageSize())
	s.log.Debug("Deck loaded", zap.Int("items", d.Len()), zap.Int("sequence", len(s.seq)))
}

// sequence returns the presentation sequence. Callers must not modify it.
func (s *Session) sequence() []deck.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func (s *Session) window() pager.Window[deck.Card] {
	return pager.WindowFor(s.seq, s.scroller.Offset(), s.scroller.PageSize(), s.scroller.RowHeight(), s.opts.Policy)
}

// View renders the current page.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.window()
	var kind deck.Kind
	v := View{
		Start:     w.Start,
		End:       w.End(),
		Total:     len(s.seq),
		PageSize:  s.scroller.PageSize(),
		Offset:    s.scroller.Offset(),
		MaxOffset: s.scroller.MaxOffset(),
		Flipped:   s.flipped,
		Dragging:  s.scroller.Dragging(),
		Mode:      s.tracker.Mode(),
		Rows:      make([]Row, 0, len(w.Items)),
	}
	if s.deck != nil {
		v.Deck = s.deck.Name
		kind = s.deck.Kind
	}
	if v.PageSize > 0 {
		v.Page = w.Start/v.PageSize + 1
		v.Pages = int(math.Ceil(float64(v.Total) / float64(v.PageSize)))
	}
	for i, c := range w.Items {
		idx := w.Start + i
		v.Rows = append(v.Rows, Row{
			Index:    idx,
			Card:     c,
			Prompt:   kind.Prompt(c.Item, s.flipped),
			Answer:   kind.Answer(c.Item, s.flipped),
			Revealed: s.tracker.IsRevealed(idx),
			Review:   c.Rep > 0,
		})
	}
	return v
}

// Reveal acts on the row at a position relative to the current page start.
// In toggle mode the answer is hidden again when already shown. It returns
// the resulting state and false for rows outside the page.
func (s *Session) Reveal(relative int) (revealed, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.window()
	if relative < 0 || relative >= len(w.Items) {
		return false, false
	}
	return s.tracker.Toggle(w.Start + relative), true
}

// IsRevealed reports whether the absolute index has been revealed.
func (s *Session) IsRevealed(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.IsRevealed(index)
}

// ToggleFlip swaps prompt and answer sides.
func (s *Session) ToggleFlip() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flipped = !s.flipped
	return s.flipped
}

// Wheel scrolls by a wheel delta in layout units.
func (s *Session) Wheel(deltaY float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroller.Wheel(deltaY)
}

// TouchStart begins a drag at y.
func (s *Session) TouchStart(y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroller.TouchStart(y)
}

// TouchMove follows a drag and reports whether the offset moved.
func (s *Session) TouchMove(y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroller.TouchMove(y)
}

// TouchEnd finishes a drag.
func (s *Session) TouchEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroller.TouchEnd()
}

// Key applies an arrow key and reports whether it was consumed.
func (s *Session) Key(k pager.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroller.Key(k)
}

// NextPage scrolls one page forward.
func (s *Session) NextPage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroller.NextPage()
}

// Close unsubscribes from viewport notifications.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.estimator.Close()
	s.log.Debug("Study session closed", zap.Int("revealed", s.tracker.Len()))
	return nil
}
