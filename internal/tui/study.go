package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/pager"
	"github.com/example/flashdeck/internal/study"
)

// WheelStep is how many rows one wheel notch scrolls before sensitivity.
const WheelStep = 1

// CellScale converts terminal cells to the layout units of a kind, so the
// pixel based scroll thresholds keep their meaning in a terminal.
func CellScale(k deck.Kind) float64 {
	if k.CellHeight <= 0 {
		return k.RowHeight
	}
	return k.RowHeight / float64(k.CellHeight)
}

// StudyModel is the bubbletea model of a study session. The session must be
// created over the same Screen passed here.
type StudyModel struct {
	session *study.Session
	screen  *pager.Screen
	kind    deck.Kind
	scale   float64
	width   int
	height  int

	// A left press that has not scrolled reveals the row under it on release.
	clicking    bool
	clickRow    int
	clickOffset float64
}

func NewStudy(s *study.Session, screen *pager.Screen, kind deck.Kind) StudyModel {
	return StudyModel{session: s, screen: screen, kind: kind, scale: CellScale(kind)}
}

func (m StudyModel) Init() tea.Cmd { return nil }

func (m StudyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.screen.Resize(float64(msg.Height) * m.scale)

	case tea.MouseMsg:
		y := float64(msg.Y) * m.scale
		switch {
		case msg.Button == tea.MouseButtonWheelUp:
			m.session.Wheel(-WheelStep * m.kind.RowHeight)
		case msg.Button == tea.MouseButtonWheelDown:
			m.session.Wheel(WheelStep * m.kind.RowHeight)
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			m.clicking, m.clickRow, m.clickOffset = true, m.rowAt(msg.Y), m.session.View().Offset
			m.session.TouchStart(y)
		case msg.Action == tea.MouseActionMotion:
			if m.session.TouchMove(y) {
				m.clicking = false
			}
		case msg.Action == tea.MouseActionRelease:
			m.session.TouchEnd()
			if m.clicking && m.clickRow >= 0 && m.session.View().Offset == m.clickOffset {
				m.session.Reveal(m.clickRow)
			}
			m.clicking = false
		}

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "down", "left", "right":
			m.session.Key(pager.ParseKey(key))
		case "pgdown", "n", " ":
			m.session.NextPage()
		case "f":
			m.session.ToggleFlip()
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.session.Reveal(int(key[0] - '1'))
		}
	}
	return m, nil
}

// headerLines is the number of terminal lines above the first row.
func (m StudyModel) headerLines() int {
	return max(2, int(math.Ceil(pager.HeaderHeight/m.scale)))
}

// rowAt maps a terminal line to a row of the current page, -1 for the header.
func (m StudyModel) rowAt(line int) int {
	top := m.headerLines()
	if line < top {
		return -1
	}
	return (line - top) / max(m.kind.CellHeight, 1)
}

func (m StudyModel) View() string {
	v := m.session.View()
	var b strings.Builder

	status := fmt.Sprintf("%s  page %d/%d  %d cards", v.Deck, v.Page, v.Pages, v.Total)
	if v.Flipped {
		status += "  flipped"
	}
	if v.Dragging {
		status += styleDragging.Render("  dragging")
	}
	// every line is cut to the width so rows stay where rowAt expects them
	b.WriteString(m.fit(styleHeader.Render(status)))
	b.WriteString("\n")
	b.WriteString(m.fit(styleSubtle.Render(" ↑↓ row  ←→ page  n next  1-9 or click reveal  f flip  q quit")))
	b.WriteString("\n")
	// the header takes HeaderHeight layout units
	for i := 2; i < m.headerLines(); i++ {
		b.WriteString("\n")
	}

	if v.Total == 0 {
		b.WriteString(styleSubtle.Render(" This deck is empty."))
		return b.String()
	}

	cell := max(m.kind.CellHeight, 1)
	for i, row := range v.Rows {
		answer := styleSubtle.Render(hiddenAnswer)
		switch {
		case row.Revealed:
			answer = styleAnswer.Render(row.Answer)
		case row.Review:
			answer = styleSubtle.Render(hiddenReview)
		}
		prompt := row.Prompt
		if m.kind.ImagePrompt && !v.Flipped {
			prompt = "🖼 " + prompt
		}
		line := fmt.Sprintf("%s %s  %s", styleIndex.Render(fmt.Sprintf("%2d", i+1)), prompt, answer)
		b.WriteString(m.fit(line))
		b.WriteString(strings.Repeat("\n", cell))
	}
	return b.String()
}

func (m StudyModel) fit(line string) string {
	if m.width <= 0 {
		return line
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}
