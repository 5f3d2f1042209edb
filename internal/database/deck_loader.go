package database

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"github.com/example/flashdeck/internal/deck"
)

// LoadDeck builds the deck for a dataset, restricted to one section when
// section is positive.
func LoadDeck(ctx context.Context, datasetID string, section int) (*deck.Deck, error) {
	ds, err := NewDatasetRepository().Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	kind, err := ds.ContentKind()
	if err != nil {
		return nil, err
	}
	items, err := NewItemRepository().List(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	return &deck.Deck{
		ID:      ds.ID,
		Name:    ds.Name,
		Kind:    kind,
		Section: section,
		Items:   deck.Section(items, section, deck.DefaultSectionCount),
	}, nil
}

// ContentKind resolves the dataset kind, applying its language overrides.
func (ds *Dataset) ContentKind() (deck.Kind, error) {
	kind, err := deck.LookupKind(ds.Kind)
	if err != nil {
		return deck.Kind{}, fmt.Errorf("dataset %s: %w", ds.ID, err)
	}
	if ds.PromptLang != "" {
		if kind.PromptLang, err = language.Parse(ds.PromptLang); err != nil {
			return deck.Kind{}, fmt.Errorf("dataset %s prompt language: %w", ds.ID, err)
		}
	}
	if ds.AnswerLang != "" {
		if kind.AnswerLang, err = language.Parse(ds.AnswerLang); err != nil {
			return deck.Kind{}, fmt.Errorf("dataset %s answer language: %w", ds.ID, err)
		}
	}
	return kind, nil
}
