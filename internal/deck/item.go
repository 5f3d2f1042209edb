// Package deck holds study items, content kinds and the presentation
// sequence built from a raw deck.
package deck

import "fmt"

// Item is one raw study record. The engine only relies on ID; the remaining
// fields are payload read through a Kind.
type Item struct {
	ID    string `json:"id" db:"item_key"`
	Front string `json:"front" db:"front"`
	Back  string `json:"back" db:"back"`
	Image string `json:"image" db:"image"`
}

// Deck is an ordered list of items loaded for one dataset (and optional section).
type Deck struct {
	ID      string
	Name    string
	Kind    Kind
	Section int
	Items   []Item
}

// Len returns the number of raw items.
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Items)
}

// Card is a copy of a raw item placed in the presentation sequence.
// Rep is 0 for the first emission of its block and 1 for the second.
type Card struct {
	Item
	Rep int
}

// Key identifies the card within a presentation sequence.
func (c Card) Key() string {
	return fmt.Sprintf("%s#%d", c.ID, c.Rep)
}
