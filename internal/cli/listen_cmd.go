package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/example/flashdeck/internal/database"
	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/playback"
	"github.com/example/flashdeck/internal/speech"
	"github.com/example/flashdeck/internal/tui"
)

// ListenCmd returns the listen command
func ListenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen <dataset>",
		Short: "Listen to a dataset read aloud",
		Long: `Narrate a dataset: each item's prompt, a short pause, then its answer.

Speech goes through SPEECH_COMMAND (espeak-ng by default). With --silent the
text is only shown, paced like reading speed.

Keys: space plays or pauses, left/right step, +/- change the rate,
v and V cycle the prompt and answer voices, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: runListen,
	}
	cmd.Flags().Int("section", 0, fmt.Sprintf("Listen to one section (1-%d) instead of the whole dataset", deck.DefaultSectionCount))
	cmd.Flags().Bool("silent", false, "Show the text without running a speech command")
	return cmd
}

func runListen(cmd *cobra.Command, args []string) (err error) {
	section, _ := cmd.Flags().GetInt("section")
	silent, _ := cmd.Flags().GetBool("silent")
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
	catalog := speech.NewCatalog(speech.DefaultVoices())

	var speaker playback.Speaker = &speech.Paced{}
	if !silent {
		speaker, err = speech.NewCommand(rt.cfg.SpeechCommand, catalog, rt.log)
		if err != nil {
			return err
		}
	}

	pairs := playback.PairsFromDeck(d)
	voiceLang, answerLang := d.Kind.PromptLang, d.Kind.AnswerLang
	if len(pairs) > 0 {
		voiceLang, answerLang = pairs[0].A.Lang, pairs[0].B.Lang
	}

	onChange, changes := tui.Changes()
	opts := playback.DefaultOptions()
	opts.Rate = rt.cfg.SpeechRate
	opts.OnChange = onChange
	seq := playback.New(speaker, pairs, opts, rt.log.With(zap.String("dataset", d.ID)))
	defer func() { err = multierr.Append(err, seq.Close()) }()

	if settings.Rate > 0 {
		seq.SetRate(min(max(settings.Rate, tui.MinRate), tui.MaxRate))
	}
	if settings.PromptVoice != "" {
		seq.SetVoice(voiceLang, settings.PromptVoice)
	}
	if settings.AnswerVoice != "" {
		seq.SetVoice(answerLang, settings.AnswerVoice)
	}

	model := tui.NewListen(seq, changes, catalog, voiceLang, answerLang, d.Name)
	model.Persist = func(rate float64, promptVoice, answerVoice string) {
		settings.Rate = rate
		settings.PromptVoice = promptVoice
		settings.AnswerVoice = answerVoice
		saveLocalSettings(ctx, rt.log, settings)
	}

	if _, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("listen screen: %w", err)
	}
	return nil
}
