package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/example/flashdeck/internal/config"
	"github.com/example/flashdeck/internal/database"
	"github.com/example/flashdeck/internal/deck"
)

type fakeAPI struct {
	mu       sync.Mutex
	nextID   int
	sent     []tgbotapi.MessageConfig
	edits    []tgbotapi.EditMessageTextConfig
	answers  []tgbotapi.CallbackConfig
	updates  chan tgbotapi.Update
	stopped  bool
	fileURLs map[string]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 100, updates: make(chan tgbotapi.Update)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, fmt.Errorf("unexpected send %T", c)
	}
	f.nextID++
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := c.(type) {
	case tgbotapi.EditMessageTextConfig:
		f.edits = append(f.edits, v)
	case tgbotapi.CallbackConfig:
		f.answers = append(f.answers, v)
	default:
		return nil, fmt.Errorf("unexpected request %T", c)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return "", fmt.Errorf("no file %s", fileID)
}

func (f *fakeAPI) lastSent() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) lastEdit() tgbotapi.EditMessageTextConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edits[len(f.edits)-1]
}

func (f *fakeAPI) lastAnswer() tgbotapi.CallbackConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.answers[len(f.answers)-1]
}

func (f *fakeAPI) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

func setupBot(t *testing.T) (*Bot, *fakeAPI) {
	t.Helper()
	db, err := database.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	database.DB = db

	ctx := context.Background()
	if err := database.NewDatasetRepository().Upsert(ctx, &database.Dataset{ID: "animals", Name: "Animals", Kind: deck.KindVocabulary}); err != nil {
		t.Fatal(err)
	}
	items := []deck.Item{
		{ID: "dog", Front: "dog", Back: "いぬ"},
		{ID: "cat", Front: "cat", Back: "ねこ"},
		{ID: "bird", Front: "bird", Back: "とり"},
	}
	if err := database.NewItemRepository().Replace(ctx, "animals", items); err != nil {
		t.Fatal(err)
	}

	api := newFakeAPI()
	botCfg := DefaultConfig()
	botCfg.FieldPause = time.Millisecond
	botCfg.ItemPause = time.Millisecond
	b := newBot(api, config.DefaultConfig(), botCfg, zap.NewNop())
	t.Cleanup(func() {
		b.sessions.CloseAll()
		database.Close()
	})
	return b, api
}

func command(chatID int64, text string) *tgbotapi.Message {
	cmd := strings.Fields(text)[0]
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: 7},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func press(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "q",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: 101, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}
}

func TestStudyFlow(t *testing.T) {
	b, api := setupBot(t)
	ctx := context.Background()

	if err := b.HandleCommand(ctx, command(1, "/study animals")); err != nil {
		t.Fatalf("/study: %v", err)
	}
	page := api.lastSent()
	if !strings.Contains(page.Text, "Animals") || !strings.Contains(page.Text, "cards 1-6 of 6") {
		t.Fatalf("page text = %q", page.Text)
	}
	if strings.Contains(page.Text, "いぬ") || strings.Contains(page.Text, "ねこ") {
		t.Errorf("answers visible before reveal: %q", page.Text)
	}

	cs, ok := b.session(1)
	if !ok {
		t.Fatal("no session registered")
	}
	c := cs.(*studyChat)
	first := c.session.View().Rows[0]

	if err := b.HandleCallback(ctx, press(1, callbackData(cs.ID(), actReveal, 0))); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	edit := api.lastEdit()
	if edit.MessageID != 101 || !strings.Contains(edit.Text, first.Answer) {
		t.Errorf("edit = %d %q, want answer %q", edit.MessageID, edit.Text, first.Answer)
	}

	if err := b.HandleCallback(ctx, press(1, callbackData(cs.ID(), actFlip))); err != nil {
		t.Fatalf("flip: %v", err)
	}
	s, err := b.settings.Get(ctx, "tg:7")
	if err != nil || s == nil || !s.Flipped {
		t.Errorf("flip not saved: %+v, %v", s, err)
	}
	if !strings.Contains(api.lastEdit().Text, "flipped") {
		t.Errorf("flipped page = %q", api.lastEdit().Text)
	}

	if err := b.HandleCallback(ctx, press(1, "deadbeef:up")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(api.lastAnswer().Text, "ended") {
		t.Errorf("stale button answer = %q", api.lastAnswer().Text)
	}

	if err := b.HandleCommand(ctx, command(1, "/stop")); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.session(1); ok {
		t.Error("session still open after /stop")
	}
}

func TestStudyUnknownDataset(t *testing.T) {
	b, api := setupBot(t)
	if err := b.HandleCommand(context.Background(), command(1, "/study nope")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(api.lastSent().Text, "No dataset") {
		t.Errorf("reply = %q", api.lastSent().Text)
	}
	if err := b.HandleCommand(context.Background(), command(1, "/study")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(api.lastSent().Text, "usage") {
		t.Errorf("reply = %q", api.lastSent().Text)
	}
}

func TestListenFlow(t *testing.T) {
	b, api := setupBot(t)
	ctx := context.Background()

	if err := b.HandleCommand(ctx, command(2, "/listen animals")); err != nil {
		t.Fatalf("/listen: %v", err)
	}
	if !strings.Contains(api.lastSent().Text, "1/3") {
		t.Fatalf("controls = %q", api.lastSent().Text)
	}
	cs, _ := b.session(2)

	if err := b.HandleCallback(ctx, press(2, callbackData(cs.ID(), actFaster))); err != nil {
		t.Fatal(err)
	}
	if got := cs.(*listenChat).seq.Rate(); got != 1.75 {
		t.Errorf("rate = %v", got)
	}

	if err := b.HandleCallback(ctx, press(2, callbackData(cs.ID(), actAnswerVoice))); err != nil {
		t.Fatal(err)
	}
	if got := cs.(*listenChat).seq.Voice(language.Japanese); got != "ja" {
		t.Errorf("answer voice = %q", got)
	}
	if got := cs.(*listenChat).seq.Voice(language.AmericanEnglish); got != "" {
		t.Errorf("prompt voice changed to %q", got)
	}
	s, err := b.settings.Get(ctx, "tg:7")
	if err != nil || s == nil || s.AnswerVoice != "ja" || s.PromptVoice != "" {
		t.Errorf("answer voice not saved: %+v, %v", s, err)
	}
	if !strings.Contains(api.lastEdit().Text, "voices default / ja") {
		t.Errorf("controls = %q", api.lastEdit().Text)
	}

	if err := b.HandleCallback(ctx, press(2, callbackData(cs.ID(), actPlay))); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if contains(api.sentTexts(), "dog") {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !contains(api.sentTexts(), "dog") {
		t.Fatalf("narration not posted: %v", api.sentTexts())
	}

	if err := b.HandleCallback(ctx, press(2, callbackData(cs.ID(), actClose))); err != nil {
		t.Fatal(err)
	}
	if cs.(*listenChat).seq.Status().Playing() {
		t.Error("still playing after close")
	}
}

func TestListenRestoresAnswerVoice(t *testing.T) {
	b, _ := setupBot(t)
	ctx := context.Background()
	if err := b.settings.Save(ctx, &database.LearnerSettings{LearnerID: "tg:7", Rate: 2, AnswerVoice: "ja"}); err != nil {
		t.Fatal(err)
	}
	if err := b.HandleCommand(ctx, command(2, "/listen animals")); err != nil {
		t.Fatal(err)
	}
	cs, _ := b.session(2)
	seq := cs.(*listenChat).seq
	if seq.Voice(language.Japanese) != "ja" || seq.Rate() != 2 {
		t.Errorf("settings not restored: voice %q rate %v", seq.Voice(language.Japanese), seq.Rate())
	}
}

func TestCommandSwitchesOpenSession(t *testing.T) {
	b, api := setupBot(t)
	ctx := context.Background()
	if err := database.NewDatasetRepository().Upsert(ctx, &database.Dataset{ID: "pets", Name: "Pets", Kind: deck.KindVocabulary}); err != nil {
		t.Fatal(err)
	}
	if err := database.NewItemRepository().Replace(ctx, "pets", []deck.Item{{ID: "fish", Front: "fish", Back: "さかな"}}); err != nil {
		t.Fatal(err)
	}

	if err := b.HandleCommand(ctx, command(5, "/study animals")); err != nil {
		t.Fatal(err)
	}
	first, _ := b.session(5)
	if err := b.HandleCommand(ctx, command(5, "/study pets")); err != nil {
		t.Fatal(err)
	}
	second, _ := b.session(5)
	if second.ID() != first.ID() {
		t.Error("study session replaced instead of switched")
	}
	if v := second.(*studyChat).session.View(); v.Deck != "Pets" || v.Total != 2 {
		t.Errorf("switched view = %+v", v)
	}
	if !strings.Contains(api.lastSent().Text, "Pets") {
		t.Errorf("switched deck not posted: %q", api.lastSent().Text)
	}

	if err := b.HandleCommand(ctx, command(5, "/listen animals")); err != nil {
		t.Fatal(err)
	}
	listen, _ := b.session(5)
	if _, ok := listen.(*listenChat); !ok {
		t.Fatalf("session = %T, want a listen session", listen)
	}
	if err := b.HandleCommand(ctx, command(5, "/listen pets")); err != nil {
		t.Fatal(err)
	}
	again, _ := b.session(5)
	if again.ID() != listen.ID() {
		t.Error("listen session replaced instead of switched")
	}
	if st := again.(*listenChat).seq.Status(); st.Total != 1 || st.Index != 0 {
		t.Errorf("switched status = %+v", st)
	}
}

func TestDatasetsCommand(t *testing.T) {
	b, api := setupBot(t)
	if err := b.HandleCommand(context.Background(), command(3, "/datasets")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(api.lastSent().Text, "animals (vocabulary)") || !strings.Contains(api.lastSent().Text, "3 items") {
		t.Errorf("datasets = %q", api.lastSent().Text)
	}
}

func TestStartAndStop(t *testing.T) {
	b, api := setupBot(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: command(4, "/help")}
	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Start = %v", err)
	}
	if err := b.Stop(); err != nil {
		t.Fatal(err)
	}
	api.mu.Lock()
	stopped := api.stopped
	api.mu.Unlock()
	if !stopped {
		t.Error("updates not stopped")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
