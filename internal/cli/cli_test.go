package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/example/flashdeck/internal/database"
)

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "flashdeck", SilenceUsage: true, SilenceErrors: true}
	AddGlobalFlags(root)
	root.AddCommand(ImportCmd(), DatasetsCmd(), StudyCmd(), ListenCmd(), BotCmd())
	return root
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	root := newRoot()
	root.SetArgs(append(args, "--log-level", "none"))
	return root.ExecuteContext(context.Background())
}

func TestImportThenList(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "flashdeck.db")
	envFile := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envFile, []byte("DATABASE_URL="+dbPath+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_URL", dbPath)

	csvPath := filepath.Join(dir, "Farm Animals.csv")
	if err := os.WriteFile(csvPath, []byte("English,Japanese\ndog,いぬ\ncat,ねこ\n,\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := run(t, "import", "--env-file", envFile, "--file", csvPath); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := run(t, "datasets", "--env-file", envFile); err != nil {
		t.Fatalf("datasets: %v", err)
	}
	if database.DB != nil {
		t.Fatal("commands should close the database")
	}

	db, err := database.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	database.DB = db
	defer database.Close()

	ds, err := database.NewDatasetRepository().Get(context.Background(), "farm-animals")
	if err != nil {
		t.Fatalf("dataset not imported: %v", err)
	}
	if ds.Name != "Farm Animals" || ds.ItemCount != 2 || ds.Kind != "vocabulary" {
		t.Errorf("unexpected dataset: %+v", ds)
	}
}

func TestImportNeedsOneSource(t *testing.T) {
	err := run(t, "import")
	if err == nil || !strings.Contains(err.Error(), "exactly one") {
		t.Errorf("expected a usage error, got %v", err)
	}
	err = run(t, "import", "--file", "a.csv", "--catalog", "b.yaml")
	if err == nil || !strings.Contains(err.Error(), "exactly one") {
		t.Errorf("expected a usage error, got %v", err)
	}
}

func TestSectionOutOfRange(t *testing.T) {
	for _, name := range []string{"study", "listen"} {
		err := run(t, name, "animals", "--section", "51")
		if err == nil || !strings.Contains(err.Error(), "section must be between 0 and 50") {
			t.Errorf("%s: expected a section error, got %v", name, err)
		}
	}
}

func TestUnknownDataset(t *testing.T) {
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "empty.db"))
	err := run(t, "study", "missing", "--env-file", filepath.Join(t.TempDir(), "none.env"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found, got %v", err)
	}
}
