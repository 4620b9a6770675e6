package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/grocer/internal/notify"
)

// ------- minimal styling helpers (Lip Gloss) -------
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	categoryStyle = lipgloss.NewStyle().Faint(true).Italic(true)

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

func OK(msg string) {
	fmt.Println(successStyle.Render("✔ " + msg))
}

func Fail(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✖ " + msg))
}

func Muted(msg string) string {
	return mutedStyle.Render(msg)
}

// RenderNotification formats one queue entry for display, TUI bar and plain
// terminal output alike.
func RenderNotification(n notify.Notification) string {
	switch n.Kind {
	case notify.KindSuccess:
		return successStyle.Render("✔ " + n.Message)
	case notify.KindError:
		return errorStyle.Render("✖ " + n.Message)
	case notify.KindWarning:
		return warningStyle.Render("! " + n.Message)
	default:
		return accentStyle.Render("· " + n.Message)
	}
}
