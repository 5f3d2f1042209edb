// Package playback narrates a list of item pairs through a Speaker, one field
// at a time, with stop, resume and step navigation.
package playback

import (
	"context"

	"golang.org/x/text/language"

	"github.com/example/flashdeck/internal/deck"
)

// Utterance is one piece of text to speak.
type Utterance struct {
	Text  string
	Lang  language.Tag
	Rate  float64
	Voice string
}

// Speaker is the shared speech output. Only one utterance plays at a time.
// Speak returns when the utterance has finished or ctx is cancelled.
type Speaker interface {
	Speak(ctx context.Context, u Utterance) error
	// Stop silences any utterance in progress.
	Stop() error
	Speaking() bool
}

// Line is one narrated field.
type Line struct {
	Text string
	Lang language.Tag
}

// Pair is narrated as A, short pause, B, longer pause.
type Pair struct {
	ID string
	A  Line
	B  Line
}

// PairsFromDeck prepares a deck for narration using its kind's spoken fields.
func PairsFromDeck(d *deck.Deck) []Pair {
	if d == nil {
		return nil
	}
	pairs := make([]Pair, 0, len(d.Items))
	for _, it := range d.Items {
		a, aLang, b, bLang := d.Kind.Spoken(it)
		pairs = append(pairs, Pair{
			ID: it.ID,
			A:  Line{Text: a, Lang: aLang},
			B:  Line{Text: b, Lang: bLang},
		})
	}
	return pairs
}
