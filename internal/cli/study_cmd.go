package cli

import (
	"fmt"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/example/flashdeck/internal/database"
	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/pager"
	"github.com/example/flashdeck/internal/study"
	"github.com/example/flashdeck/internal/tui"
)

// StudyCmd returns the study command
func StudyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study <dataset>",
		Short: "Study a dataset in the terminal",
		Long: `Study a dataset as a scrolling list of cards with hidden answers.

Keys: arrows scroll, space or n turns the page, 1-9 reveal a row,
f flips prompt and answer, q quits. The mouse wheel and dragging scroll too.`,
		Args: cobra.ExactArgs(1),
		RunE: runStudy,
	}
	cmd.Flags().Int("section", 0, fmt.Sprintf("Study one section (1-%d) instead of the whole dataset", deck.DefaultSectionCount))
	return cmd
}

func runStudy(cmd *cobra.Command, args []string) (err error) {
	section, _ := cmd.Flags().GetInt("section")
	if section < 0 || section > deck.DefaultSectionCount {
		return fmt.Errorf("section must be between 0 and %d", deck.DefaultSectionCount)
	}

	rt, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, rt.close()) }()
	ctx := cmd.Context()

	d, err := database.LoadDeck(ctx, args[0], section)
	if err != nil {
		return err
	}
	settings := localSettings(ctx, rt.log)

	opts := study.DefaultOptions()
	opts.BlockSize = rt.cfg.BlockSize
	opts.Policy = rt.cfg.WindowPolicy
	opts.RevealMode = rt.cfg.RevealMode
	opts.RowHeight = d.Kind.RowHeight
	opts.Flipped = settings.Flipped
	opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	if m, perr := pager.ParseMode(settings.RevealMode); perr == nil && settings.RevealMode != "" {
		opts.RevealMode = m
	}

	// The first WindowSizeMsg sets the real height.
	screen := pager.NewScreen(0)
	session := study.New(d, screen, opts, rt.log)
	defer func() { err = multierr.Append(err, session.Close()) }()

	p := tea.NewProgram(tui.NewStudy(session, screen, d.Kind),
		tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("study screen: %w", err)
	}

	if flipped := session.View().Flipped; flipped != settings.Flipped {
		settings.Flipped = flipped
		saveLocalSettings(ctx, rt.log, settings)
	}
	return nil
}
