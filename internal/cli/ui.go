package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	replyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)
)

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✓")+" "+msg)
}

func printError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("✗")+" "+msg)
}

func printWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render("⚠")+" "+msg)
}

func printInfo(w io.Writer, msg string) {
	fmt.Fprintln(w, infoStyle.Render("•")+" "+msg)
}

// writeJSON renders v indented for --json consumers.
func writeJSON(w io.Writer, v any) error {
	out, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
