package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printSection prints body on its own line, headed by title when w is a
// terminal. Empty sections print nothing.
func printSection(w io.Writer, title, body string) {
	if body == "" {
		return
	}
	if isTerminal(w) {
		fmt.Fprintln(w, headingStyle.Render(title)) //nolint:errcheck // best-effort stdout
	}
	fmt.Fprintln(w, body) //nolint:errcheck // best-effort stdout
}
