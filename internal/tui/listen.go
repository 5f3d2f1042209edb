package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/example/flashdeck/internal/playback"
	"github.com/example/flashdeck/internal/speech"
)

// Rate limits for the +/- keys.
const (
	RateStep = 0.25
	MinRate  = 0.5
	MaxRate  = 3.0
)

type statusMsg struct{}

// Changes returns an OnChange hook and the channel it signals. Signals are
// coalesced; the model reads the latest status when it handles one.
func Changes() (func(playback.Status), <-chan struct{}) {
	ch := make(chan struct{}, 1)
	return func(playback.Status) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}, ch
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return statusMsg{}
	}
}

// ListenModel is the bubbletea model of a listen session.
type ListenModel struct {
	seq        *playback.Sequencer
	changes    <-chan struct{}
	catalog    *speech.Catalog
	voiceLang  language.Tag
	answerLang language.Tag
	deckName   string
	status     playback.Status

	// Persist is called after the learner changes rate or a voice.
	Persist func(rate float64, promptVoice, answerVoice string)
}

// NewListen builds the model. changes must be the channel paired with the
// sequencer's OnChange hook, see Changes.
func NewListen(seq *playback.Sequencer, changes <-chan struct{}, catalog *speech.Catalog, voiceLang, answerLang language.Tag, deckName string) ListenModel {
	return ListenModel{
		seq:        seq,
		changes:    changes,
		catalog:    catalog,
		voiceLang:  voiceLang,
		answerLang: answerLang,
		deckName:   deckName,
		status:     seq.Status(),
	}
}

func (m ListenModel) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func (m ListenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.status = m.seq.Status()
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			m.seq.TogglePlay()
		case "left", "h":
			m.seq.Previous()
		case "right", "l":
			m.seq.Next()
		case "+", "=":
			m.setRate(m.seq.Rate() + RateStep)
		case "-", "_":
			m.setRate(m.seq.Rate() - RateStep)
		case "v":
			m.cycleVoice(m.voiceLang)
		case "V":
			m.cycleVoice(m.answerLang)
		}
		m.status = m.seq.Status()
	}
	return m, nil
}

func (m ListenModel) setRate(rate float64) {
	m.seq.SetRate(min(max(rate, MinRate), MaxRate))
	m.persist()
}

func (m ListenModel) cycleVoice(lang language.Tag) {
	if voice := m.catalog.NextVoice(lang, m.seq.Voice(lang)); voice != "" {
		m.seq.SetVoice(lang, voice)
		m.persist()
	}
}

func (m ListenModel) persist() {
	if m.Persist != nil {
		m.Persist(m.seq.Rate(), m.seq.Voice(m.voiceLang), m.seq.Voice(m.answerLang))
	}
}

func (m ListenModel) View() string {
	st := m.status
	var b strings.Builder
	b.WriteString(styleHeader.Render("🎧 " + m.deckName))
	b.WriteString("\n\n")

	if st.Total == 0 {
		b.WriteString(styleSubtle.Render(" This deck is empty."))
		b.WriteString("\n")
		return b.String()
	}

	state := styleStopped.Render(st.State.String())
	if st.Playing() {
		state = stylePlaying.Render(st.State.String())
	}
	b.WriteString(fmt.Sprintf(" %s  %d/%d  rate %g×  voices %s / %s\n\n", state, st.Index+1, st.Total, st.Rate,
		voiceName(m.seq.Voice(m.voiceLang)), voiceName(m.seq.Voice(m.answerLang))))
	b.WriteString(fmt.Sprintf("   %s\n   %s\n\n", st.Current.A.Text, styleAnswer.Render(st.Current.B.Text)))
	b.WriteString(styleSubtle.Render(" space play/pause  ←→ prev/next  +/- rate  v/V prompt/answer voice  q quit"))
	b.WriteString("\n")
	return b.String()
}

func voiceName(v string) string {
	if v == "" {
		return "default"
	}
	return v
}
