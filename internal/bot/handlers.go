package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/flashdeck/internal/database"
	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/excel"
)

const helpText = "📖 Flashdeck\n\n" +
	"/datasets - List available datasets\n" +
	"/study <id> [section] - Study a dataset page by page\n" +
	"/listen <id> [section] - Listen to a dataset read aloud\n" +
	"/stop - Close the current session\n" +
	"/help - Show this help\n\n" +
	"Sending /study or /listen again while a session is open switches it to the new dataset.\n\n" +
	"Sections split a dataset into 50 interleaved parts: section 1 holds items 1, 51, 101 and so on. " +
	"Leave the section out to use the whole dataset."

// HandleCommand dispatches a chat command
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start", "help":
		return b.handleHelp(message)
	case "datasets":
		return b.handleDatasets(ctx, message)
	case "study":
		return b.handleStudy(ctx, message)
	case "listen":
		return b.handleListen(ctx, message)
	case "stop":
		return b.handleStop(message)
	case "import":
		b.notify(message.Chat.ID, "Send the spreadsheet as a document with the caption /import <id> [kind].")
		return nil
	default:
		b.notify(message.Chat.ID, "Unknown command. Use /help to see what I can do.")
		return nil
	}
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	_, err := b.api.Send(tgbotapi.NewMessage(message.Chat.ID, helpText))
	return err
}

func (b *Bot) handleDatasets(ctx context.Context, message *tgbotapi.Message) error {
	datasets, err := b.datasets.List(ctx)
	if err != nil {
		b.notify(message.Chat.ID, "❌ Unable to list datasets right now.")
		return err
	}
	_, err = b.api.Send(tgbotapi.NewMessage(message.Chat.ID, renderDatasets(datasets)))
	return err
}

// learnerOf identifies whose settings apply to a message.
func learnerOf(message *tgbotapi.Message) string {
	if message.From != nil {
		return learnerKey(message.From.ID)
	}
	return learnerKey(message.Chat.ID)
}

// parseDeckArgs reads "<id> [section]".
func parseDeckArgs(args string) (id string, section int, err error) {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return "", 0, errors.New("usage: <dataset id> [section]")
	}
	id = fields[0]
	if len(fields) == 2 {
		section, err = strconv.Atoi(fields[1])
		if err != nil || section < 0 || section > deck.DefaultSectionCount {
			return "", 0, fmt.Errorf("section must be a number from 1 to %d", deck.DefaultSectionCount)
		}
	}
	return id, section, nil
}

// loadDeck resolves command arguments to a deck, replying to the chat on
// user errors.
func (b *Bot) loadDeck(ctx context.Context, message *tgbotapi.Message) (*deck.Deck, bool, error) {
	id, section, err := parseDeckArgs(message.CommandArguments())
	if err != nil {
		b.notify(message.Chat.ID, fmt.Sprintf("⚠️ %v\nTry /datasets to see the available ids.", err))
		return nil, false, nil
	}
	d, err := database.LoadDeck(ctx, id, section)
	if errors.Is(err, database.ErrDatasetNotFound) {
		b.notify(message.Chat.ID, fmt.Sprintf("⚠️ No dataset %q. Try /datasets.", id))
		return nil, false, nil
	}
	if err != nil {
		b.notify(message.Chat.ID, "❌ Unable to load the dataset.")
		return nil, false, err
	}
	return d, true, nil
}

func (b *Bot) handleStudy(ctx context.Context, message *tgbotapi.Message) error {
	d, ok, err := b.loadDeck(ctx, message)
	if !ok {
		return err
	}
	if cs, ok := b.session(message.Chat.ID); ok {
		if c, ok := cs.(*studyChat); ok && c.switchDeck(d) {
			return c.render()
		}
	}
	learner := learnerOf(message)
	c := b.newStudyChat(message.Chat.ID, learner, d, b.loadSettings(ctx, learner))
	if err := b.openSession(c); err != nil {
		b.log.Warn("Previous session did not close cleanly", zap.Error(err))
	}
	return c.render()
}

func (b *Bot) handleListen(ctx context.Context, message *tgbotapi.Message) error {
	d, ok, err := b.loadDeck(ctx, message)
	if !ok {
		return err
	}
	if cs, ok := b.session(message.Chat.ID); ok {
		if c, ok := cs.(*listenChat); ok && c.switchDeck(d) {
			return c.render()
		}
	}
	learner := learnerOf(message)
	c := b.newListenChat(message.Chat.ID, learner, d, b.loadSettings(ctx, learner))
	if err := b.openSession(c); err != nil {
		b.log.Warn("Previous session did not close cleanly", zap.Error(err))
	}
	return c.render()
}

func (b *Bot) handleStop(message *tgbotapi.Message) error {
	if _, ok := b.session(message.Chat.ID); !ok {
		b.notify(message.Chat.ID, "Nothing to stop.")
		return nil
	}
	err := b.closeSession(message.Chat.ID)
	b.notify(message.Chat.ID, "Session closed.")
	return err
}

// HandleCallback handles inline button presses
func (b *Bot) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.Message == nil || query.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}
	chatID := query.Message.Chat.ID

	answer := func(text string) {
		if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, text)); err != nil {
			b.log.Debug("Failed to answer callback", zap.Error(err))
		}
	}

	cb, err := parseCallback(query.Data)
	if err != nil {
		answer("")
		return err
	}

	cs, ok := b.session(chatID)
	if !ok || tag(cs.ID()) != cb.Session {
		answer("This session has ended. Start a new one with /study or /listen.")
		return nil
	}

	if cb.Action == actClose {
		answer("Closed")
		return b.closeSession(chatID)
	}

	var (
		note   string
		redraw bool
	)
	switch c := cs.(type) {
	case *studyChat:
		note, redraw = c.apply(ctx, cb)
		answer(note)
		if redraw {
			return c.render()
		}
	case *listenChat:
		note, redraw = c.apply(ctx, cb)
		answer(note)
		if redraw {
			return c.render()
		}
	default:
		answer("")
	}
	return nil
}

// handleDocument imports a spreadsheet sent by an administrator with the
// caption "/import <id> [kind]".
func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) error {
	fields := strings.Fields(message.Caption)
	if len(fields) == 0 || fields[0] != "/import" {
		return nil
	}
	if message.From == nil || !b.cfg.IsAdmin(message.From.ID) {
		b.notify(message.Chat.ID, "This command is only available for administrators.")
		return nil
	}
	if len(fields) < 2 {
		b.notify(message.Chat.ID, "Usage: /import <id> [kind]")
		return nil
	}

	cfg := excel.DefaultImportConfig()
	cfg.DatasetID = fields[1]
	cfg.Name = strings.TrimSuffix(message.Document.FileName, filepath.Ext(message.Document.FileName))
	if len(fields) > 2 {
		cfg.Kind = fields[2]
	}

	path, err := b.download(message.Document)
	if err != nil {
		b.notify(message.Chat.ID, "❌ Unable to download the file.")
		return err
	}
	defer os.Remove(path)
	cfg.FilePath = path

	result, err := excel.ImportDataset(ctx, cfg)
	switch {
	case errors.Is(err, excel.ErrUnsupportedFormat):
		b.notify(message.Chat.ID, "⚠️ Send an .xlsx or .csv file.")
		return nil
	case errors.Is(err, deck.ErrUnknownKind):
		b.notify(message.Chat.ID, fmt.Sprintf("⚠️ Unknown kind. Use one of: %s", strings.Join(deck.KindNames(), ", ")))
		return nil
	case err != nil:
		b.notify(message.Chat.ID, "❌ Import failed.")
		return err
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("✅ Imported %s: %d items, %d skipped.", cfg.DatasetID, result.Imported, result.Skipped))
	for i, e := range result.Errors {
		if i == 10 {
			text.WriteString(fmt.Sprintf("\n… and %d more", len(result.Errors)-i))
			break
		}
		text.WriteString("\n- " + e)
	}
	b.notify(message.Chat.ID, text.String())
	return nil
}

// download saves a Telegram document to a temporary file keeping its extension.
func (b *Bot) download(doc *tgbotapi.Document) (string, error) {
	url, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return "", fmt.Errorf("failed to get file URL: %w", err)
	}
	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download file: %s", resp.Status)
	}

	f, err := os.CreateTemp("", "flashdeck-*"+filepath.Ext(doc.FileName))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return f.Name(), nil
}
