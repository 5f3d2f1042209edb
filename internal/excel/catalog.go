package excel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/example/flashdeck/internal/deck"
)

// Columns maps item fields to spreadsheet columns.
type Columns struct {
	Key   string `yaml:"key,omitempty"`
	Front string `yaml:"front,omitempty"`
	Back  string `yaml:"back,omitempty"`
	Image string `yaml:"image,omitempty"`
}

// CatalogEntry describes one dataset file.
type CatalogEntry struct {
	ID          string   `yaml:"id,omitempty"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Kind        string   `yaml:"kind,omitempty"`
	File        string   `yaml:"file"`
	Sheet       string   `yaml:"sheet,omitempty"`
	StartRow    int      `yaml:"start_row,omitempty"`
	PromptLang  string   `yaml:"prompt_lang,omitempty"`
	AnswerLang  string   `yaml:"answer_lang,omitempty"`
	Columns     *Columns `yaml:"columns,omitempty"`
}

// Catalog is a YAML manifest listing datasets to import.
type Catalog struct {
	Datasets []CatalogEntry `yaml:"datasets"`

	dir string
}

// LoadCatalog reads a catalog file. Unknown keys are rejected.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	var c Catalog
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	c.dir = filepath.Dir(path)

	seen := make(map[string]bool)
	for i := range c.Datasets {
		e := &c.Datasets[i]
		if e.File == "" {
			return nil, fmt.Errorf("catalog entry %d: file is required", i+1)
		}
		if e.Name == "" {
			e.Name = trimExt(filepath.Base(e.File))
		}
		if e.ID == "" {
			e.ID = slug.Make(e.Name)
		}
		if e.Kind == "" {
			e.Kind = deck.KindVocabulary
		}
		if _, err := deck.LookupKind(e.Kind); err != nil {
			return nil, fmt.Errorf("catalog entry %s: %w", e.ID, err)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("catalog entry %s: duplicate id", e.ID)
		}
		seen[e.ID] = true
	}
	return &c, nil
}

// Config turns an entry into an import configuration, resolving the file
// relative to the catalog.
func (c *Catalog) Config(e CatalogEntry) ImportConfig {
	cfg := DefaultImportConfig()
	cfg.DatasetID = e.ID
	cfg.Name = e.Name
	cfg.Description = e.Description
	cfg.Kind = e.Kind
	cfg.PromptLang = e.PromptLang
	cfg.AnswerLang = e.AnswerLang
	cfg.SheetName = e.Sheet
	if e.StartRow > 0 {
		cfg.StartRow = e.StartRow
	}
	cfg.FilePath = e.File
	if !filepath.IsAbs(cfg.FilePath) {
		cfg.FilePath = filepath.Join(c.dir, cfg.FilePath)
	}
	if e.Columns != nil {
		cfg.KeyColumn = e.Columns.Key
		if e.Columns.Front != "" {
			cfg.FrontColumn = e.Columns.Front
		}
		if e.Columns.Back != "" {
			cfg.BackColumn = e.Columns.Back
		}
		if e.Columns.Image != "" {
			cfg.ImageColumn = e.Columns.Image
		}
	}
	return cfg
}

// ImportCatalog imports every dataset of the catalog. A failing dataset
// does not stop the others; all failures are returned together.
func ImportCatalog(ctx context.Context, path string, log *zap.Logger) ([]*ImportResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}

	var (
		results []*ImportResult
		errs    error
	)
	for _, e := range c.Datasets {
		if err := ctx.Err(); err != nil {
			return results, multierr.Append(errs, err)
		}
		res, err := ImportDataset(ctx, c.Config(e))
		if err != nil {
			log.Error("Dataset import failed", zap.String("dataset", e.ID), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("dataset %s: %w", e.ID, err))
			continue
		}
		log.Info("Dataset imported", zap.String("dataset", e.ID),
			zap.Int("items", res.Imported), zap.Int("skipped", res.Skipped))
		results = append(results, res)
	}
	if len(c.Datasets) == 0 {
		errs = multierr.Append(errs, errors.New("catalog lists no datasets"))
	}
	return results, errs
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
