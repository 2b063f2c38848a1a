package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// PrintBanner outputs the PixelPilot banner to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"  ___ _         _ ___ _ _     _   ", "#22d3ee"},
		{" | _ (_)_ _____| | _ (_) |___| |_ ", "#38bdf8"},
		{" |  _/ \\ \\ / -_) |  _/ | / _ \\  _|", "#60a5fa"},
		{" |_| |_/_\\_\\___|_|_| |_|_\\___/\\__|", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  "+version).Faint())
	fmt.Fprintln(w)
}
