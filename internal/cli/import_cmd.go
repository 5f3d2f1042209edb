package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/excel"
)

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import datasets from spreadsheets",
		Long: `Import datasets from .xlsx or .csv files into the database.

Either name a YAML catalog listing several files, or import one file:

  flashdeck import --catalog datasets.yaml
  flashdeck import --file animals.xlsx --id animals --kind vocabulary

Columns default to A=front, B=back, C=image and the first row is a header.
Importing an existing id replaces its items.`,
		RunE: runImport,
	}

	cmd.Flags().String("catalog", "", "YAML catalog of datasets")
	cmd.Flags().String("file", "", "Spreadsheet or CSV file")
	cmd.Flags().String("id", "", "Dataset id (derived from --name or the file name when empty)")
	cmd.Flags().String("name", "", "Dataset name")
	cmd.Flags().String("description", "", "Dataset description")
	cmd.Flags().String("kind", deck.KindVocabulary, "Content kind: "+strings.Join(deck.KindNames(), ", "))
	cmd.Flags().String("sheet", "", "Sheet name (first sheet when empty)")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	catalog, _ := cmd.Flags().GetString("catalog")
	file, _ := cmd.Flags().GetString("file")
	if (catalog == "") == (file == "") {
		return errors.New("use exactly one of --catalog or --file")
	}

	rt, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer rt.close()
	ctx := cmd.Context()

	if catalog != "" {
		results, err := excel.ImportCatalog(ctx, catalog, rt.log)
		for _, res := range results {
			printResult(res)
		}
		return err
	}

	cfg := excel.DefaultImportConfig()
	cfg.FilePath = file
	cfg.DatasetID, _ = cmd.Flags().GetString("id")
	cfg.Name, _ = cmd.Flags().GetString("name")
	cfg.Description, _ = cmd.Flags().GetString("description")
	cfg.Kind, _ = cmd.Flags().GetString("kind")
	cfg.SheetName, _ = cmd.Flags().GetString("sheet")
	if cfg.Name == "" {
		base := filepath.Base(file)
		cfg.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if cfg.DatasetID == "" {
		cfg.DatasetID = slug.Make(cfg.Name)
	}

	res, err := excel.ImportDataset(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", file, err)
	}
	printResult(res)
	return nil
}

func printResult(res *excel.ImportResult) {
	fmt.Printf("%s %s: %d items imported", color.New(color.FgGreen).Sprint("✓"), res.DatasetID, res.Imported)
	if res.Skipped > 0 {
		fmt.Printf(", %s", color.New(color.FgYellow).Sprintf("%d skipped", res.Skipped))
	}
	fmt.Println()
	for _, e := range res.Errors {
		fmt.Printf("  %s\n", color.New(color.FgYellow).Sprint(e))
	}
}
