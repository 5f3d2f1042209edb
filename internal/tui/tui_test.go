package tui

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"

	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/pager"
	"github.com/example/flashdeck/internal/playback"
	"github.com/example/flashdeck/internal/speech"
	"github.com/example/flashdeck/internal/study"
)

func testDeck(t *testing.T, n int) *deck.Deck {
	t.Helper()
	k, err := deck.LookupKind(deck.KindVocabulary)
	if err != nil {
		t.Fatal(err)
	}
	d := &deck.Deck{ID: "v", Name: "Words", Kind: k}
	for i := 0; i < n; i++ {
		d.Items = append(d.Items, deck.Item{ID: string(rune('a' + i)), Front: "front-" + string(rune('a'+i)), Back: "back-" + string(rune('a'+i))})
	}
	return d
}

func newStudyModel(t *testing.T, n int) (StudyModel, *study.Session) {
	t.Helper()
	d := testDeck(t, n)
	screen := pager.NewScreen(0)
	opts := study.DefaultOptions()
	opts.RowHeight = d.Kind.RowHeight
	opts.Rand = rand.New(rand.NewSource(1))
	s := study.New(d, screen, opts, zaptest.NewLogger(t))
	t.Cleanup(func() { s.Close() })
	return NewStudy(s, screen, d.Kind), s
}

func update(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStudyResizeSetsPageSize(t *testing.T) {
	m, s := newStudyModel(t, 20)
	// 24 rows of 38 units: floor((912-70)/38)-1 = 21
	update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if got := s.View().PageSize; got != 21 {
		t.Errorf("page size = %d, want 21", got)
	}
	update(t, m, tea.WindowSizeMsg{Width: 80, Height: 5})
	if got := s.View().PageSize; got != pager.MinimumPageSize {
		t.Errorf("page size = %d, want minimum", got)
	}
}

func TestStudyKeysAndReveal(t *testing.T) {
	m, s := newStudyModel(t, 20)
	var model tea.Model = m
	model = update(t, model, tea.WindowSizeMsg{Width: 80, Height: 10})
	page := s.View().PageSize

	model = update(t, model, tea.KeyMsg{Type: tea.KeyDown})
	if got := s.View().Start; got != 1 {
		t.Errorf("start after down = %d", got)
	}
	model = update(t, model, tea.KeyMsg{Type: tea.KeyUp})
	if got := s.View().Offset; got != 0 {
		t.Errorf("offset after up = %v", got)
	}

	model = update(t, model, runes("n"))
	if got := s.View().Start; got != page {
		t.Errorf("start after next page = %d, want %d", got, page)
	}

	model = update(t, model, runes("2"))
	if !s.IsRevealed(page + 1) {
		t.Error("key 2 should reveal the second visible row")
	}
	if !strings.Contains(model.View(), s.View().Rows[1].Answer) {
		t.Error("revealed answer not drawn")
	}

	model = update(t, model, runes("f"))
	if !s.View().Flipped {
		t.Error("f should flip")
	}

	_, cmd := model.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not return tea.Quit")
	}
}

func TestStudyMouse(t *testing.T) {
	m, s := newStudyModel(t, 20)
	var model tea.Model = m
	model = update(t, model, tea.WindowSizeMsg{Width: 80, Height: 10})

	model = update(t, model, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	row := 38.0
	want := row * pager.WheelSensitivity
	if got := s.View().Offset; got != want {
		t.Errorf("offset after wheel = %v, want %v", got, want)
	}
	model = update(t, model, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if got := s.View().Offset; got != 0 {
		t.Errorf("offset after wheel up = %v", got)
	}

	model = update(t, model, tea.MouseMsg{Y: 8, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if !s.View().Dragging {
		t.Error("press should start a drag")
	}
	model = update(t, model, tea.MouseMsg{Y: 6, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	// two cells of 38 units dragged upward scroll forward
	if got := s.View().Offset; got != (8*row-6*row)*pager.TouchSensitivity {
		t.Errorf("offset after drag = %v", got)
	}
	update(t, model, tea.MouseMsg{Y: 6, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if s.View().Dragging {
		t.Error("release should end the drag")
	}
	for _, r := range s.View().Rows {
		if r.Revealed {
			t.Errorf("a drag must not reveal row %d", r.Index)
		}
	}
}

func TestStudyClickRevealsAnyRow(t *testing.T) {
	m, s := newStudyModel(t, 20)
	var model tea.Model = m
	model = update(t, model, tea.WindowSizeMsg{Width: 80, Height: 24})
	if got := len(s.View().Rows); got != 21 {
		t.Fatalf("rows = %d, want 21", got)
	}

	// rows start below the two header lines, so line 13 is row 12
	model = update(t, model, tea.MouseMsg{Y: 13, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	model = update(t, model, tea.MouseMsg{Y: 13, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if !s.IsRevealed(11) {
		t.Fatal("click should reveal row 12")
	}
	if !strings.Contains(model.View(), s.View().Rows[11].Answer) {
		t.Error("revealed answer not drawn")
	}

	model = update(t, model, tea.MouseMsg{Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	update(t, model, tea.MouseMsg{Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	for _, r := range s.View().Rows {
		if r.Revealed && r.Index != 11 {
			t.Errorf("header click revealed row %d", r.Index)
		}
	}
}

func TestStudyShowsSecondShowings(t *testing.T) {
	m, s := newStudyModel(t, 20)
	var model tea.Model = m
	model = update(t, model, tea.WindowSizeMsg{Width: 80, Height: 24})

	// one block of 20 shown twice: row 21 is the first repeat
	reviews := 0
	for _, r := range s.View().Rows {
		if r.Review {
			reviews++
		}
	}
	if reviews != 1 {
		t.Fatalf("review rows = %d, want 1", reviews)
	}
	if got := strings.Count(model.View(), hiddenReview); got != reviews {
		t.Errorf("review placeholders = %d, want %d", got, reviews)
	}
}

func TestStudyEmptyDeck(t *testing.T) {
	m, _ := newStudyModel(t, 0)
	if !strings.Contains(m.View(), "empty") {
		t.Errorf("view = %q", m.View())
	}
}

func TestListenModel(t *testing.T) {
	d := testDeck(t, 2)
	onChange, changes := Changes()
	opts := playback.DefaultOptions()
	opts.FieldPause, opts.ItemPause = time.Millisecond, time.Millisecond
	opts.OnChange = onChange

	spoken := make(chan string, 16)
	speaker := &speech.Paced{
		Sink: func(_ context.Context, u playback.Utterance) error {
			spoken <- u.Text
			return nil
		},
		Duration: func(playback.Utterance) time.Duration { return time.Hour },
	}
	seq := playback.New(speaker, playback.PairsFromDeck(d), opts, zaptest.NewLogger(t))
	t.Cleanup(func() { seq.Close() })

	var persisted []float64
	var answerVoice string
	m := NewListen(seq, changes, speech.NewCatalog(speech.DefaultVoices()), language.AmericanEnglish, language.Japanese, d.Name)
	m.Persist = func(rate float64, _, answer string) {
		persisted = append(persisted, rate)
		answerVoice = answer
	}
	var model tea.Model = m

	model = update(t, model, runes("+"))
	if seq.Rate() != 1.75 || len(persisted) != 1 {
		t.Errorf("rate = %v persisted %v", seq.Rate(), persisted)
	}
	for i := 0; i < 10; i++ {
		model = update(t, model, runes("-"))
	}
	if seq.Rate() != MinRate {
		t.Errorf("rate not clamped: %v", seq.Rate())
	}

	model = update(t, model, runes("v"))
	if got := seq.Voice(language.AmericanEnglish); got != "en-us" {
		t.Errorf("voice = %q", got)
	}
	model = update(t, model, runes("V"))
	if got := seq.Voice(language.Japanese); got != "ja" || answerVoice != "ja" {
		t.Errorf("answer voice = %q, persisted %q", got, answerVoice)
	}
	if !strings.Contains(model.View(), "voices en-us / ja") {
		t.Errorf("view = %q", model.View())
	}

	model = update(t, model, tea.KeyMsg{Type: tea.KeySpace})
	select {
	case text := <-spoken:
		if text != "front-a" {
			t.Errorf("first utterance = %q", text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("playback did not start")
	}
	model = update(t, model, statusMsg{})
	if !strings.Contains(model.View(), "playing") {
		t.Errorf("view = %q", model.View())
	}

	model = update(t, model, tea.KeyMsg{Type: tea.KeySpace})
	if seq.Status().Playing() {
		t.Error("space should pause")
	}
	if !strings.Contains(model.View(), "stopped") {
		t.Errorf("view after pause = %q", model.View())
	}
}
