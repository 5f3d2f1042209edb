package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	// DefaultFieldPause separates the two fields of a pair.
	DefaultFieldPause = 100 * time.Millisecond
	// DefaultItemPause separates consecutive pairs.
	DefaultItemPause = 200 * time.Millisecond
	// DefaultSettle lets cancelled speech go quiet before a restart.
	DefaultSettle = 50 * time.Millisecond
	DefaultRate   = 1.5
)

// State of the sequencer.
type State int

const (
	// Idle is the state before the first play and after a full pass.
	Idle State = iota
	// Playing means a narration loop is running.
	Playing
	// Stopped keeps the index where playback was paused.
	Stopped
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Stopped:
		return "stopped"
	}
	return "idle"
}

// Status is a snapshot handed to observers.
type Status struct {
	State State
	Index int
	Total int
	Rate  float64
	// Current is the pair at Index, zero when there are no items.
	Current Pair
}

// Playing is a shorthand for State == Playing.
func (s Status) Playing() bool { return s.State == Playing }

// Options tunes the pauses between fields and items.
type Options struct {
	FieldPause time.Duration
	ItemPause  time.Duration
	Settle     time.Duration
	Rate       float64
	// OnChange is called after every state or index change without the
	// state lock held, possibly from the playback goroutine. It may read
	// Status but must not call transport commands.
	OnChange func(Status)
}

// DefaultOptions returns the stock pauses and rate.
func DefaultOptions() Options {
	return Options{
		FieldPause: DefaultFieldPause,
		ItemPause:  DefaultItemPause,
		Settle:     DefaultSettle,
		Rate:       DefaultRate,
	}
}

// Sequencer owns playback over one item list. At most one narration loop
// runs at a time: starting a new one first stops the previous loop and waits
// for it to exit.
type Sequencer struct {
	speaker Speaker
	log     *zap.Logger
	opts    Options

	// ctrl serializes transport commands; the loop never takes it.
	ctrl sync.Mutex

	mu     sync.Mutex
	items  []Pair
	index  int
	state  State
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
	rate   float64
	voices map[language.Base]string
	closed bool
}

// New creates an idle sequencer positioned at the first item.
func New(speaker Speaker, items []Pair, opts Options, log *zap.Logger) *Sequencer {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Rate <= 0 {
		opts.Rate = DefaultRate
	}
	return &Sequencer{
		speaker: speaker,
		log:     log,
		opts:    opts,
		items:   items,
		rate:    opts.Rate,
		voices:  map[language.Base]string{},
	}
}

func (s *Sequencer) statusLocked() Status {
	st := Status{State: s.state, Index: s.index, Total: len(s.items), Rate: s.rate}
	if s.index < len(s.items) {
		st.Current = s.items[s.index]
	}
	return st
}

// Status returns the current playback state.
func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Sequencer) notify() {
	if s.opts.OnChange == nil {
		return
	}
	s.opts.OnChange(s.Status())
}

// SetRate changes the speech rate. It applies from the next utterance.
func (s *Sequencer) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	s.notify()
}

// Rate returns the current speech rate.
func (s *Sequencer) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// SetVoice selects the voice used for a language. An empty name restores the
// speaker's default. It applies from the next utterance.
func (s *Sequencer) SetVoice(lang language.Tag, name string) {
	base, _ := lang.Base()
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" {
		delete(s.voices, base)
		return
	}
	s.voices[base] = name
}

// Voice returns the voice selected for a language.
func (s *Sequencer) Voice(lang language.Tag) string {
	base, _ := lang.Base()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voices[base]
}

// SetItems replaces the item list, stopping playback and rewinding.
func (s *Sequencer) SetItems(items []Pair) {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()
	s.halt()
	s.mu.Lock()
	s.items = items
	s.index = 0
	s.state = Idle
	s.mu.Unlock()
	s.notify()
}

// TogglePlay stops a running narration, keeping its position, or starts
// narrating from the current position.
func (s *Sequencer) TogglePlay() {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.mu.Lock()
	playing, closed := s.state == Playing, s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	if playing {
		s.halt()
		s.notify()
		return
	}
	s.start()
}

// Next moves to the following item. See step.
func (s *Sequencer) Next() { s.step(1) }

// Previous moves to the preceding item. See step.
func (s *Sequencer) Previous() { s.step(-1) }

// step moves the position by delta. Moving past either end is a no-op. When
// playing, the running loop is stopped and restarted at the new position
// after a short settle delay so the cancelled speech has gone quiet.
func (s *Sequencer) step(delta int) {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.mu.Lock()
	target := s.index + delta
	if s.closed || target < 0 || target >= len(s.items) {
		s.mu.Unlock()
		return
	}
	wasPlaying := s.state == Playing
	s.mu.Unlock()

	if wasPlaying {
		s.halt()
	}
	s.mu.Lock()
	s.index = target
	s.mu.Unlock()

	if !wasPlaying {
		s.notify()
		return
	}
	time.Sleep(s.opts.Settle)
	s.start()
}

// Close aborts any narration and silences the speaker. The sequencer ignores
// all further commands.
func (s *Sequencer) Close() error {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.halt()
}

// halt invalidates the current generation, stops speech and waits for the
// loop to exit. Callers hold ctrl.
func (s *Sequencer) halt() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.gen++
	if s.state == Playing {
		s.state = Stopped
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	err := s.speaker.Stop()
	if done != nil {
		<-done
	}
	return err
}

// start launches a loop from the current index. Callers hold ctrl.
func (s *Sequencer) start() {
	if err := s.halt(); err != nil {
		s.log.Warn("Unable to stop speech before playback", zap.Error(err))
	}

	s.mu.Lock()
	if s.closed || len(s.items) == 0 {
		s.mu.Unlock()
		return
	}
	if s.index >= len(s.items) {
		s.index = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.state = Playing
	gen, from, items := s.gen, s.index, s.items
	s.mu.Unlock()

	s.log.Debug("Playback started", zap.Int("index", from), zap.Int("total", len(items)))
	s.notify()
	go s.run(ctx, gen, from, items, done)
}

// current reports whether gen is still the live attempt.
func (s *Sequencer) current(ctx context.Context, gen uint64) bool {
	if ctx.Err() != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

func (s *Sequencer) run(ctx context.Context, gen uint64, from int, items []Pair, done chan struct{}) {
	defer close(done)

	for i := from; i < len(items); i++ {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.index = i
		s.mu.Unlock()
		s.notify()

		s.say(ctx, i, "a", items[i].A)
		if !s.current(ctx, gen) || !pause(ctx, s.opts.FieldPause) || !s.current(ctx, gen) {
			return
		}
		s.say(ctx, i, "b", items[i].B)
		if !s.current(ctx, gen) || !pause(ctx, s.opts.ItemPause) || !s.current(ctx, gen) {
			return
		}
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.log.Debug("Playback completed", zap.Int("total", len(items)))
	s.index = 0
	s.state = Idle
	cancel := s.cancel
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.notify()
}

// say speaks one line with the rate and voice in effect right now. Failures
// abandon this line only.
func (s *Sequencer) say(ctx context.Context, index int, field string, line Line) {
	if line.Text == "" {
		return
	}
	base, _ := line.Lang.Base()
	s.mu.Lock()
	u := Utterance{Text: line.Text, Lang: line.Lang, Rate: s.rate, Voice: s.voices[base]}
	s.mu.Unlock()

	if err := s.speaker.Speak(ctx, u); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("Speech failed", zap.Int("index", index), zap.String("field", field), zap.Error(err))
	}
}

func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
