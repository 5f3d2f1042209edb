package bot

import (
	"context"
	"math/rand"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/example/flashdeck/internal/database"
	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/pager"
	"github.com/example/flashdeck/internal/playback"
	"github.com/example/flashdeck/internal/speech"
	"github.com/example/flashdeck/internal/study"
)

// chatSession is what the bot keeps per chat in the session registry.
type chatSession interface {
	ID() string
	ChatID() int64
	Close() error
}

// studyChat is a study session rendered as one message edited in place.
type studyChat struct {
	b         *Bot
	chatID    int64
	learnerID string
	kind      deck.Kind
	screen    *pager.Screen
	session   *study.Session

	mu        sync.Mutex
	messageID int
}

func (b *Bot) newStudyChat(chatID int64, learnerID string, d *deck.Deck, settings *database.LearnerSettings) *studyChat {
	opts := study.DefaultOptions()
	opts.BlockSize = b.cfg.BlockSize
	opts.Policy = b.cfg.WindowPolicy
	opts.RevealMode = b.cfg.RevealMode
	opts.RowHeight = d.Kind.RowHeight
	opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	if settings != nil {
		opts.Flipped = settings.Flipped
		if m, err := pager.ParseMode(settings.RevealMode); err == nil && settings.RevealMode != "" {
			opts.RevealMode = m
		}
	}

	screen := pager.NewScreen(b.botCfg.viewportHeight(d.Kind))
	return &studyChat{
		b:         b,
		chatID:    chatID,
		learnerID: learnerID,
		kind:      d.Kind,
		screen:    screen,
		session:   study.New(d, screen, opts, b.log.With(zap.Int64("chat", chatID))),
	}
}

// switchDeck loads another deck of the same kind into the open session and
// starts a fresh message for it.
func (c *studyChat) switchDeck(d *deck.Deck) bool {
	if d.Kind.Name != c.kind.Name {
		return false
	}
	c.session.SetDeck(d)
	c.mu.Lock()
	c.messageID = 0
	c.mu.Unlock()
	return true
}

func (c *studyChat) ID() string    { return c.session.ID }
func (c *studyChat) ChatID() int64 { return c.chatID }
func (c *studyChat) Close() error  { return c.session.Close() }

// render sends the page as a new message or edits the existing one.
func (c *studyChat) render() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, markup := renderStudy(c.session.ID, c.session.View())
	id, err := c.b.upsertMessage(c.chatID, c.messageID, text, markup)
	if err != nil {
		return err
	}
	c.messageID = id
	return nil
}

// apply runs one button action and reports whether the page needs redrawing.
func (c *studyChat) apply(ctx context.Context, cb callback) (string, bool) {
	switch cb.Action {
	case actUp:
		return "", c.session.Key(pager.KeyUp)
	case actDown:
		return "", c.session.Key(pager.KeyDown)
	case actLeft:
		return "", c.session.Key(pager.KeyLeft)
	case actRight:
		return "", c.session.Key(pager.KeyRight)
	case actNext:
		c.session.NextPage()
		return "", true
	case actFlip:
		flipped := c.session.ToggleFlip()
		c.b.saveSettings(ctx, c.learnerID, func(s *database.LearnerSettings) { s.Flipped = flipped })
		return "", true
	case actReveal:
		revealed, ok := c.session.Reveal(cb.Arg)
		if !ok {
			return "That row is no longer on the page", false
		}
		if !revealed {
			return "Hidden", true
		}
		return "", true
	}
	return "", false
}

// listenChat narrates a deck into the chat and keeps a control message
// showing progress.
type listenChat struct {
	b         *Bot
	id        string
	chatID    int64
	learnerID string
	seq       *playback.Sequencer

	mu         sync.Mutex
	deckName   string
	voiceLang  language.Tag
	answerLang language.Tag
	messageID  int
	changed    chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

func (b *Bot) newListenChat(chatID int64, learnerID string, d *deck.Deck, settings *database.LearnerSettings) *listenChat {
	c := &listenChat{
		b:         b,
		id:        newSessionID(),
		chatID:    chatID,
		learnerID: learnerID,
		changed:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	pairs := playback.PairsFromDeck(d)
	c.deckName, c.voiceLang, c.answerLang = d.Name, d.Kind.PromptLang, d.Kind.AnswerLang
	if len(pairs) > 0 {
		c.voiceLang, c.answerLang = pairs[0].A.Lang, pairs[0].B.Lang
	}

	speaker := &speech.Paced{
		Sink: func(ctx context.Context, u playback.Utterance) error {
			msg := tgbotapi.NewMessage(chatID, u.Text)
			msg.DisableNotification = true
			_, err := b.api.Send(msg)
			return err
		},
	}

	opts := playback.DefaultOptions()
	opts.FieldPause = b.botCfg.FieldPause
	opts.ItemPause = b.botCfg.ItemPause
	opts.Rate = b.cfg.SpeechRate
	opts.OnChange = func(playback.Status) {
		select {
		case c.changed <- struct{}{}:
		default:
		}
	}
	c.seq = playback.New(speaker, pairs, opts, b.log.With(zap.Int64("chat", chatID), zap.String("session", c.id)))

	if settings != nil {
		if settings.Rate > 0 {
			c.seq.SetRate(b.botCfg.clampRate(settings.Rate))
		}
		if settings.PromptVoice != "" {
			c.seq.SetVoice(c.voiceLang, settings.PromptVoice)
		}
		if settings.AnswerVoice != "" {
			c.seq.SetVoice(c.answerLang, settings.AnswerVoice)
		}
	}

	go c.refreshLoop()
	return c
}

// switchDeck narrates another deck in the same languages from its start,
// keeping rate and voices.
func (c *listenChat) switchDeck(d *deck.Deck) bool {
	pairs := playback.PairsFromDeck(d)
	voiceLang, answerLang := d.Kind.PromptLang, d.Kind.AnswerLang
	if len(pairs) > 0 {
		voiceLang, answerLang = pairs[0].A.Lang, pairs[0].B.Lang
	}

	c.mu.Lock()
	same := voiceLang == c.voiceLang && answerLang == c.answerLang
	if same {
		c.deckName = d.Name
		c.messageID = 0
	}
	c.mu.Unlock()
	if !same {
		return false
	}
	c.seq.SetItems(pairs)
	return true
}

func (c *listenChat) ID() string    { return c.id }
func (c *listenChat) ChatID() int64 { return c.chatID }

// Close aborts narration and stops refreshing the control message.
func (c *listenChat) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = multierr.Append(err, c.seq.Close())
		close(c.done)
	})
	return err
}

// refreshLoop redraws the control message after sequencer changes,
// coalescing bursts into one edit.
func (c *listenChat) refreshLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.changed:
			if c.seq.Status().Playing() {
				// narration counts as activity for the idle sweeper
				c.b.sessions.Touch(sessionKey(c.chatID))
			}
			if err := c.render(); err != nil {
				c.b.log.Debug("Unable to refresh listen controls", zap.Error(err))
			}
		}
	}
}

func (c *listenChat) render() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, markup := renderListen(c.id, c.deckName, c.seq.Status(), c.seq.Voice(c.voiceLang), c.seq.Voice(c.answerLang))
	id, err := c.b.upsertMessage(c.chatID, c.messageID, text, markup)
	if err != nil {
		return err
	}
	c.messageID = id
	return nil
}

func (c *listenChat) apply(ctx context.Context, cb callback) (string, bool) {
	switch cb.Action {
	case actPlay:
		c.seq.TogglePlay()
	case actPrev:
		c.seq.Previous()
	case actForward:
		c.seq.Next()
	case actFaster, actSlower:
		step := c.b.botCfg.RateStep
		if cb.Action == actSlower {
			step = -step
		}
		rate := c.b.botCfg.clampRate(c.seq.Rate() + step)
		c.seq.SetRate(rate)
		c.b.saveSettings(ctx, c.learnerID, func(s *database.LearnerSettings) { s.Rate = rate })
		return "", true
	case actVoice, actAnswerVoice:
		c.mu.Lock()
		lang := c.voiceLang
		if cb.Action == actAnswerVoice {
			lang = c.answerLang
		}
		c.mu.Unlock()
		voice := c.b.catalog.NextVoice(lang, c.seq.Voice(lang))
		if voice == "" {
			return "No other voices for this language", false
		}
		c.seq.SetVoice(lang, voice)
		c.b.saveSettings(ctx, c.learnerID, func(s *database.LearnerSettings) {
			if cb.Action == actAnswerVoice {
				s.AnswerVoice = voice
			} else {
				s.PromptVoice = voice
			}
		})
		return "Voice: " + voice, true
	default:
		return "", false
	}
	return "", true
}
