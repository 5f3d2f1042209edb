package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/flashdeck/internal/database"
	"github.com/example/flashdeck/internal/pager"
	"github.com/example/flashdeck/internal/playback"
	"github.com/example/flashdeck/internal/study"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		if len(row) == 0 {
			continue
		}
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Placeholders for hidden answers; a card's second showing reads as review.
const (
	hiddenAnswer = "░░░░"
	hiddenReview = "🔁 ░░░░"
)

// renderStudy draws one study page as message text and its buttons.
func renderStudy(sessionID string, v study.View) (string, tgbotapi.InlineKeyboardMarkup) {
	var text strings.Builder
	text.WriteString(fmt.Sprintf("📚 %s\n", v.Deck))
	if v.Total == 0 {
		text.WriteString("\nThis deck is empty.")
	} else {
		text.WriteString(fmt.Sprintf("Page %d/%d · cards %d-%d of %d", v.Page, v.Pages, v.Start+1, v.End, v.Total))
		if v.Flipped {
			text.WriteString(" · flipped")
		}
		text.WriteString("\n\n")
	}

	var revealRow []MenuButton
	var revealRows [][]MenuButton
	for i, row := range v.Rows {
		answer := hiddenAnswer
		switch {
		case row.Revealed:
			answer = row.Answer
		case row.Review:
			answer = hiddenReview
		}
		text.WriteString(fmt.Sprintf("%d. %s → %s\n", i+1, row.Prompt, answer))

		label := fmt.Sprintf("👁 %d", i+1)
		switch {
		case row.Revealed && v.Mode == pager.ToggleReveal:
			label = fmt.Sprintf("🙈 %d", i+1)
		case row.Revealed:
			label = fmt.Sprintf("✓ %d", i+1)
		}
		revealRow = append(revealRow, MenuButton{label, callbackData(sessionID, actReveal, i)})
		if len(revealRow) == 4 {
			revealRows = append(revealRows, revealRow)
			revealRow = nil
		}
	}
	if len(revealRow) > 0 {
		revealRows = append(revealRows, revealRow)
	}

	buttons := append(revealRows,
		[]MenuButton{
			{"⬆", callbackData(sessionID, actUp)},
			{"⬇", callbackData(sessionID, actDown)},
			{"⬅", callbackData(sessionID, actLeft)},
			{"➡", callbackData(sessionID, actRight)},
		},
		[]MenuButton{
			{"⏭ Next page", callbackData(sessionID, actNext)},
			{"🔄 Flip", callbackData(sessionID, actFlip)},
			{"✖ Close", callbackData(sessionID, actClose)},
		},
	)
	return text.String(), createKeyboard(buttons)
}

// renderListen draws the narration controls.
func renderListen(sessionID, deckName string, st playback.Status, promptVoice, answerVoice string) (string, tgbotapi.InlineKeyboardMarkup) {
	var text strings.Builder
	text.WriteString(fmt.Sprintf("🎧 %s\n", deckName))

	switch {
	case st.Total == 0:
		text.WriteString("\nThis deck is empty.")
	default:
		icon := "⏸"
		if st.Playing() {
			icon = "▶"
		}
		text.WriteString(fmt.Sprintf("%s %s %d/%d · rate %g×", icon, st.State, st.Index+1, st.Total, st.Rate))
		if promptVoice != "" || answerVoice != "" {
			text.WriteString(fmt.Sprintf(" · voices %s / %s", orDefault(promptVoice), orDefault(answerVoice)))
		}
		text.WriteString(fmt.Sprintf("\n\n%s\n%s", st.Current.A.Text, st.Current.B.Text))
	}

	playLabel := "▶ Play"
	if st.Playing() {
		playLabel = "⏸ Pause"
	}
	buttons := [][]MenuButton{
		{
			{"⏮", callbackData(sessionID, actPrev)},
			{playLabel, callbackData(sessionID, actPlay)},
			{"⏭", callbackData(sessionID, actForward)},
		},
		{
			{"➖ Slower", callbackData(sessionID, actSlower)},
			{"➕ Faster", callbackData(sessionID, actFaster)},
		},
		{
			{"🗣 Prompt voice", callbackData(sessionID, actVoice)},
			{"🗣 Answer voice", callbackData(sessionID, actAnswerVoice)},
		},
		{
			{"✖ Close", callbackData(sessionID, actClose)},
		},
	}
	return text.String(), createKeyboard(buttons)
}

func orDefault(voice string) string {
	if voice == "" {
		return "default"
	}
	return voice
}

// renderDatasets lists datasets for the /datasets command.
func renderDatasets(datasets []database.Dataset) string {
	if len(datasets) == 0 {
		return "No datasets yet. An administrator can send a spreadsheet with the caption /import <id> [kind]."
	}
	var text strings.Builder
	text.WriteString("Available datasets:\n\n")
	for _, ds := range datasets {
		text.WriteString(fmt.Sprintf("• %s (%s) · %s, %d items\n", ds.ID, ds.Kind, ds.Name, ds.ItemCount))
	}
	text.WriteString("\nUse /study <id> [section] or /listen <id> [section].")
	return text.String()
}
