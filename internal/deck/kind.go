package deck

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/language"
)

// ErrUnknownKind is returned when a dataset references an unregistered kind.
var ErrUnknownKind = errors.New("unknown content kind")

// Field selects one payload field of an Item.
type Field int

const (
	FieldFront Field = iota
	FieldBack
	FieldImage
)

// Kind describes how items of one content type are rendered and narrated.
type Kind struct {
	Name        string
	PromptField Field
	AnswerField Field
	PromptLang  language.Tag
	AnswerLang  language.Tag
	// RowHeight is measured in pixels for graphical hosts.
	RowHeight float64
	// CellHeight is the row height in terminal cells.
	CellHeight int
	// ImagePrompt is set when the prompt is a picture rather than text.
	ImagePrompt bool
}

const (
	KindVocabulary = "vocabulary"
	KindFlags      = "flags"
	KindGeography  = "geography"
)

var kinds = map[string]Kind{
	KindVocabulary: {
		Name:        KindVocabulary,
		PromptField: FieldFront,
		AnswerField: FieldBack,
		PromptLang:  language.AmericanEnglish,
		AnswerLang:  language.Japanese,
		RowHeight:   38,
		CellHeight:  1,
	},
	KindFlags: {
		Name:        KindFlags,
		PromptField: FieldImage,
		AnswerField: FieldFront,
		PromptLang:  language.Und,
		AnswerLang:  language.Japanese,
		RowHeight:   89,
		CellHeight:  3,
		ImagePrompt: true,
	},
	KindGeography: {
		Name:        KindGeography,
		PromptField: FieldFront,
		AnswerField: FieldBack,
		PromptLang:  language.Japanese,
		AnswerLang:  language.Japanese,
		RowHeight:   38,
		CellHeight:  1,
	},
}

// LookupKind resolves a content kind by name.
func LookupKind(name string) (Kind, error) {
	k, ok := kinds[name]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// KindNames returns registered kind names in sorted order.
func KindNames() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Value returns the requested field of an item.
func (f Field) Value(it Item) string {
	switch f {
	case FieldBack:
		return it.Back
	case FieldImage:
		return it.Image
	default:
		return it.Front
	}
}

// Prompt returns the side shown first. When flipped the answer side is shown
// first instead.
func (k Kind) Prompt(it Item, flipped bool) string {
	if flipped {
		return k.AnswerField.Value(it)
	}
	return k.PromptField.Value(it)
}

// Answer returns the hidden side.
func (k Kind) Answer(it Item, flipped bool) string {
	if flipped {
		return k.PromptField.Value(it)
	}
	return k.AnswerField.Value(it)
}

// Spoken returns the two narrated fields with their languages. Image prompts
// fall back to the front text since pictures cannot be read aloud.
func (k Kind) Spoken(it Item) (a string, aLang language.Tag, b string, bLang language.Tag) {
	a, aLang = k.PromptField.Value(it), k.PromptLang
	if k.ImagePrompt {
		a, aLang = it.Front, k.AnswerLang
		return a, aLang, it.Back, k.AnswerLang
	}
	return a, aLang, k.AnswerField.Value(it), k.AnswerLang
}
