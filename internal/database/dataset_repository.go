package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/maruel/natural"
)

// ErrDatasetNotFound is returned when no dataset has the requested id.
var ErrDatasetNotFound = errors.New("dataset not found")

// Dataset is a stored collection of study items.
type Dataset struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Kind        string    `db:"kind"`
	PromptLang  string    `db:"prompt_lang"`
	AnswerLang  string    `db:"answer_lang"`
	ItemCount   int       `db:"item_count"`
	UpdatedAt   time.Time `db:"updated_at"`
}

const datasetColumns = `
	d.id, d.name, d.description, d.kind, d.prompt_lang, d.answer_lang, d.updated_at,
	(SELECT COUNT(*) FROM items i WHERE i.dataset_id = d.id) AS item_count`

// DatasetRepository handles database operations for datasets
type DatasetRepository struct{}

// NewDatasetRepository creates a new repository instance
func NewDatasetRepository() *DatasetRepository {
	return &DatasetRepository{}
}

// List returns all datasets in natural order of their ids
func (r *DatasetRepository) List(ctx context.Context) ([]Dataset, error) {
	var datasets []Dataset
	err := DB.SelectContext(ctx, &datasets, "SELECT "+datasetColumns+" FROM datasets d")
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	sort.Slice(datasets, func(i, j int) bool {
		return natural.Less(datasets[i].ID, datasets[j].ID)
	})
	return datasets, nil
}

// Get returns a dataset by id
func (r *DatasetRepository) Get(ctx context.Context, id string) (*Dataset, error) {
	var ds Dataset
	err := DB.GetContext(ctx, &ds, DB.Rebind("SELECT "+datasetColumns+" FROM datasets d WHERE d.id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset %s: %w", id, err)
	}
	return &ds, nil
}

// Upsert creates the dataset or updates its description fields
func (r *DatasetRepository) Upsert(ctx context.Context, ds *Dataset) error {
	query := DB.Rebind(`
		INSERT INTO datasets (id, name, description, kind, prompt_lang, answer_lang, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			kind = excluded.kind,
			prompt_lang = excluded.prompt_lang,
			answer_lang = excluded.answer_lang,
			updated_at = excluded.updated_at
	`)
	ds.UpdatedAt = time.Now().UTC()
	_, err := DB.ExecContext(ctx, query,
		ds.ID, ds.Name, ds.Description, ds.Kind, ds.PromptLang, ds.AnswerLang, ds.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save dataset %s: %w", ds.ID, err)
	}
	return nil
}

// Delete removes a dataset together with its items
func (r *DatasetRepository) Delete(ctx context.Context, id string) error {
	res, err := DB.ExecContext(ctx, DB.Rebind("DELETE FROM datasets WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return nil
}
