package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/example/flashdeck/internal/deck"
)

// ItemRepository handles database operations for dataset items
type ItemRepository struct{}

// NewItemRepository creates a new repository instance
func NewItemRepository() *ItemRepository {
	return &ItemRepository{}
}

// Replace swaps the items of a dataset for the given ones, keeping their
// order. Items without an id get their 1-based position.
func (r *ItemRepository) Replace(ctx context.Context, datasetID string, items []deck.Item) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM items WHERE dataset_id = ?"), datasetID); err != nil {
		return fmt.Errorf("failed to clear items of %s: %w", datasetID, err)
	}

	insert := tx.Rebind(`
		INSERT INTO items (dataset_id, position, item_key, front, back, image)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	for i, it := range items {
		key := it.ID
		if key == "" {
			key = strconv.Itoa(i + 1)
		}
		if _, err := tx.ExecContext(ctx, insert, datasetID, i, key, it.Front, it.Back, it.Image); err != nil {
			return fmt.Errorf("failed to insert item %s of %s: %w", key, datasetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit items of %s: %w", datasetID, err)
	}
	return nil
}

// List returns the items of a dataset in stored order
func (r *ItemRepository) List(ctx context.Context, datasetID string) ([]deck.Item, error) {
	items := []deck.Item{}
	query := DB.Rebind(`
		SELECT item_key, front, back, image
		FROM items
		WHERE dataset_id = ?
		ORDER BY position
	`)
	if err := DB.SelectContext(ctx, &items, query, datasetID); err != nil {
		return nil, fmt.Errorf("failed to get items of %s: %w", datasetID, err)
	}
	return items, nil
}
