package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/flashdeck/internal/database"
	"github.com/example/flashdeck/internal/deck"
)

// ErrUnsupportedFormat is returned for files that are neither spreadsheets nor CSV.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath    string // Path to the Excel or CSV file
	DatasetID   string
	Name        string
	Description string
	Kind        string
	PromptLang  string // Overrides the kind's prompt language
	AnswerLang  string // Overrides the kind's answer language
	KeyColumn   string // Column with a stable item id, positions are used when empty
	FrontColumn string
	BackColumn  string
	ImageColumn string
	SheetName   string // Name of the sheet to import, the first sheet when empty
	StartRow    int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		Kind:        deck.KindVocabulary,
		FrontColumn: "A",
		BackColumn:  "B",
		ImageColumn: "C",
		StartRow:    2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	DatasetID      string
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

// ImportDataset reads the file and replaces the dataset's items with its rows
func ImportDataset(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	kind, err := deck.LookupKind(config.Kind)
	if err != nil {
		return nil, err
	}
	if config.DatasetID == "" {
		return nil, errors.New("dataset id is required")
	}
	if config.Name == "" {
		config.Name = config.DatasetID
	}

	items, result, err := ReadItems(config, kind)
	if err != nil {
		return nil, err
	}

	ds := &database.Dataset{
		ID:          config.DatasetID,
		Name:        config.Name,
		Description: config.Description,
		Kind:        kind.Name,
		PromptLang:  config.PromptLang,
		AnswerLang:  config.AnswerLang,
	}
	if _, err := ds.ContentKind(); err != nil {
		return nil, err
	}
	if err := database.NewDatasetRepository().Upsert(ctx, ds); err != nil {
		return nil, err
	}
	if err := database.NewItemRepository().Replace(ctx, ds.ID, items); err != nil {
		return nil, err
	}
	result.Imported = len(items)
	return result, nil
}

// ReadItems extracts items from an Excel or CSV file. Rows missing the
// prompt or answer of the kind are reported and skipped.
func ReadItems(config ImportConfig, kind deck.Kind) ([]deck.Item, *ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(config.FilePath)) {
	case ".csv":
		rows, err = readCSV(config.FilePath)
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		rows, err = readExcel(config.FilePath, config.SheetName)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, config.FilePath)
	}
	if err != nil {
		return nil, nil, err
	}

	result := &ImportResult{DatasetID: config.DatasetID, Errors: make([]string, 0)}
	items := make([]deck.Item, 0, len(rows))
	seen := make(map[string]int)
	startRow := max(config.StartRow, 1)

	for i, row := range rows {
		rowNum := i + 1
		// Skip header rows
		if rowNum < startRow {
			continue
		}
		if isBlank(row) {
			continue
		}
		result.TotalProcessed++

		it := deck.Item{
			ID:    cell(row, config.KeyColumn),
			Front: cell(row, config.FrontColumn),
			Back:  cell(row, config.BackColumn),
			Image: cell(row, config.ImageColumn),
		}
		if kind.PromptField.Value(it) == "" || kind.AnswerField.Value(it) == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: missing prompt or answer", rowNum))
			continue
		}
		if it.ID != "" {
			if prev, dup := seen[it.ID]; dup {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: id %q already used in row %d", rowNum, it.ID, prev))
				continue
			}
			seen[it.ID] = rowNum
		}
		items = append(items, it)
	}

	// Rows without an explicit id are keyed by their position in the
	// dataset, which must not collide with explicit ids.
	for i := range items {
		if items[i].ID != "" {
			continue
		}
		key := fmt.Sprint(i + 1)
		for n := 2; ; n++ {
			if _, taken := seen[key]; !taken {
				break
			}
			key = fmt.Sprintf("%d-%d", i+1, n)
		}
		seen[key] = 0
		items[i].ID = key
	}
	return items, result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
