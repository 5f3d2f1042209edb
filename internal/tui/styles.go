// Package tui renders study and listen sessions in the terminal.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	styleHeader   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleSubtle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleAnswer   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleIndex    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	stylePlaying  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleStopped  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleDragging = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

const (
	hiddenAnswer = "····"
	hiddenReview = "↻ ····"
)
