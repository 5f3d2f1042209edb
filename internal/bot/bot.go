// Package bot hosts study and listen sessions in Telegram chats.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/flashdeck/internal/config"
	"github.com/example/flashdeck/internal/database"
	"github.com/example/flashdeck/internal/scheduler"
	"github.com/example/flashdeck/internal/speech"
)

// telegramAPI is the part of *tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

// Bot represents the Telegram bot application
type Bot struct {
	api      telegramAPI
	cfg      *config.Config
	botCfg   *BotConfig
	log      *zap.Logger
	sessions *scheduler.Registry
	sweeper  *scheduler.Scheduler
	catalog  *speech.Catalog
	datasets *database.DatasetRepository
	settings *database.SettingsRepository
}

// New creates a new bot instance
func New(cfg *config.Config, log *zap.Logger) (*Bot, error) {
	if cfg.TelegramToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	if database.DB == nil {
		return nil, errors.New("database connection is not established")
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("Authorized on account", zap.String("username", api.Self.UserName))
	return newBot(api, cfg, DefaultConfig(), log), nil
}

func newBot(api telegramAPI, cfg *config.Config, botCfg *BotConfig, log *zap.Logger) *Bot {
	b := &Bot{
		api:      api,
		cfg:      cfg,
		botCfg:   botCfg,
		log:      log,
		sessions: scheduler.NewRegistry(),
		catalog:  speech.NewCatalog(speech.DefaultVoices()),
		datasets: database.NewDatasetRepository(),
		settings: database.NewSettingsRepository(),
	}
	b.sessions.OnExpire = func(key string, c io.Closer) {
		if cs, ok := c.(chatSession); ok {
			b.notify(cs.ChatID(), "⌛ Session closed after inactivity. Start again with /study or /listen.")
		}
	}
	b.sweeper = scheduler.New(b.sessions, cfg.SessionIdleTimeout, log)
	return b
}

func newSessionID() string { return uuid.NewString() }

func sessionKey(chatID int64) string { return fmt.Sprintf("chat:%d", chatID) }

func learnerKey(userID int64) string { return fmt.Sprintf("tg:%d", userID) }

// Start polls for updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if err := b.sweeper.Start(); err != nil {
		return fmt.Errorf("unable to start session sweeper: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.botCfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// Stop stops polling and closes every open session
func (b *Bot) Stop() error {
	b.api.StopReceivingUpdates()
	b.sweeper.Stop()
	err := b.sessions.CloseAll()
	b.log.Info("Bot stopped")
	return err
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.Document != nil:
		err = b.handleDocument(ctx, update.Message)
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.handleHelp(update.Message)
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.log.Warn("Update handling failed", zap.Int("update", update.UpdateID), zap.Error(err))
	}
}

// session returns the chat's open session, marking it as used.
func (b *Bot) session(chatID int64) (chatSession, bool) {
	c, ok := b.sessions.Get(sessionKey(chatID))
	if !ok {
		return nil, false
	}
	cs, ok := c.(chatSession)
	return cs, ok
}

// openSession replaces the chat's session.
func (b *Bot) openSession(cs chatSession) error {
	return b.sessions.Add(sessionKey(cs.ChatID()), cs)
}

func (b *Bot) closeSession(chatID int64) error {
	return b.sessions.Remove(sessionKey(chatID))
}

// upsertMessage edits messageID in place, or sends a new message when there
// is none yet. It returns the id of the message showing the text.
func (b *Bot) upsertMessage(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) (int, error) {
	if messageID == 0 {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = markup
		sent, err := b.api.Send(msg)
		if err != nil {
			return 0, fmt.Errorf("failed to send message: %w", err)
		}
		return sent.MessageID, nil
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	if _, err := b.api.Request(edit); err != nil && !strings.Contains(err.Error(), "message is not modified") {
		return messageID, fmt.Errorf("failed to edit message: %w", err)
	}
	return messageID, nil
}

func (b *Bot) notify(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("Failed to send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// loadSettings returns the learner's saved settings, nil when none or on error.
func (b *Bot) loadSettings(ctx context.Context, learnerID string) *database.LearnerSettings {
	s, err := b.settings.Get(ctx, learnerID)
	if err != nil {
		b.log.Warn("Unable to load learner settings", zap.String("learner", learnerID), zap.Error(err))
		return nil
	}
	return s
}

// saveSettings applies change to the learner's settings and stores them.
func (b *Bot) saveSettings(ctx context.Context, learnerID string, change func(*database.LearnerSettings)) {
	s := b.loadSettings(ctx, learnerID)
	if s == nil {
		s = &database.LearnerSettings{
			LearnerID:  learnerID,
			Rate:       b.cfg.SpeechRate,
			RevealMode: b.cfg.RevealMode.String(),
		}
	}
	change(s)
	if err := b.settings.Save(ctx, s); err != nil {
		b.log.Warn("Unable to save learner settings", zap.String("learner", learnerID), zap.Error(err))
	}
}
