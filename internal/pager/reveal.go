package pager

import "fmt"

// Mode selects how a tracker reacts to a learner tapping a row.
type Mode int

const (
	// RevealOnly never hides an answer again once shown.
	RevealOnly Mode = iota
	// ToggleReveal lets the learner hide an answer again.
	ToggleReveal
)

func (m Mode) String() string {
	if m == ToggleReveal {
		return "toggle"
	}
	return "reveal"
}

// ParseMode converts a configuration value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "reveal":
		return RevealOnly, nil
	case "toggle":
		return ToggleReveal, nil
	}
	return RevealOnly, fmt.Errorf("unknown reveal mode %q", s)
}

// Tracker records which absolute sequence indices have their answer shown.
type Tracker struct {
	mode     Mode
	revealed map[int]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker(mode Mode) *Tracker {
	return &Tracker{mode: mode, revealed: map[int]struct{}{}}
}

// Mode returns the tracker's reveal policy.
func (t *Tracker) Mode() Mode { return t.mode }

// Reveal marks index as shown. Repeated calls are no-ops.
func (t *Tracker) Reveal(index int) {
	if index < 0 {
		return
	}
	t.revealed[index] = struct{}{}
}

// IsRevealed reports whether index has been shown.
func (t *Tracker) IsRevealed(index int) bool {
	_, ok := t.revealed[index]
	return ok
}

// Toggle flips membership of index in ToggleReveal mode. In RevealOnly mode
// it only ever reveals. It returns the resulting state.
func (t *Tracker) Toggle(index int) bool {
	if t.mode == ToggleReveal && t.IsRevealed(index) {
		delete(t.revealed, index)
		return false
	}
	t.Reveal(index)
	return t.IsRevealed(index)
}

// Len returns how many indices are revealed.
func (t *Tracker) Len() int { return len(t.revealed) }

// Reset forgets everything; used when the deck is reshuffled.
func (t *Tracker) Reset() {
	t.revealed = map[int]struct{}{}
}
