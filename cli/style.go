package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/richinex/studio/lifecycle"
	"github.com/richinex/studio/model"
	"github.com/richinex/studio/quiz"
)

type theme struct {
	title     lipgloss.Style
	muted     lipgloss.Style
	status    lipgloss.Style
	alert     lipgloss.Style
	success   lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	tool      lipgloss.Style
	option    map[quiz.Class]lipgloss.Style
}

func newTheme() theme {
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	red := lipgloss.Color("#ff5f87")
	amber := lipgloss.Color("#ffb86c")
	muted := lipgloss.Color("#9ca3d8")

	return theme{
		title:     lipgloss.NewStyle().Bold(true).Foreground(blue),
		muted:     lipgloss.NewStyle().Foreground(muted),
		status:    lipgloss.NewStyle().Italic(true).Foreground(amber),
		alert:     lipgloss.NewStyle().Bold(true).Foreground(red),
		success:   lipgloss.NewStyle().Foreground(mint),
		user:      lipgloss.NewStyle().Bold(true).Foreground(blue),
		assistant: lipgloss.NewStyle().Bold(true).Foreground(mint),
		tool:      lipgloss.NewStyle().Foreground(muted).PaddingLeft(2),
		option: map[quiz.Class]lipgloss.Style{
			quiz.Plain:     lipgloss.NewStyle(),
			quiz.Selected:  lipgloss.NewStyle().Bold(true).Foreground(blue),
			quiz.Correct:   lipgloss.NewStyle().Bold(true).Foreground(mint),
			quiz.Incorrect: lipgloss.NewStyle().Strikethrough(true).Foreground(red),
		},
	}
}

// role renders the speaker label of a chat entry.
func (t theme) role(r model.Role) string {
	if r == model.RoleUser {
		return t.user.Render("you")
	}
	return t.assistant.Render("assistant")
}

// overlayPrinter renders loading overlay changes as status lines on w.
func overlayPrinter(w io.Writer, t theme) func(lifecycle.Snapshot) {
	return func(s lifecycle.Snapshot) {
		if s.Visible {
			fmt.Fprintln(w, t.status.Render("… "+s.Message))
		}
	}
}
