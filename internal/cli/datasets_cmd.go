package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/flashdeck/internal/database"
	"github.com/example/flashdeck/internal/deck"
)

// DatasetsCmd returns the datasets command
func DatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List imported datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer rt.close()

			datasets, err := database.NewDatasetRepository().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(datasets) == 0 {
				fmt.Println("No datasets found. Add some with 'flashdeck import'.")
				return nil
			}

			fmt.Printf("Found %d dataset(s):\n\n", len(datasets))
			for _, ds := range datasets {
				sections := deck.Sections(ds.ItemCount, deck.DefaultSectionCount)
				fmt.Printf("  %s  %s  %s\n",
					color.New(color.FgCyan).Sprintf("%-20s", ds.ID),
					color.New(color.FgHiBlack).Sprintf("%-10s", ds.Kind),
					ds.Name)
				fmt.Printf("  %-20s  %d items, %d sections\n", "", ds.ItemCount, sections)
				if ds.Description != "" {
					fmt.Printf("  %-20s  %s\n", "", ds.Description)
				}
			}
			return nil
		},
	}
}
