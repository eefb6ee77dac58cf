package render

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const fallbackWidth = 100

// DetectWidth returns the column count of the terminal on stdout, or 100
// when stdout is not a terminal.
func DetectWidth() int {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return fallbackWidth
	}
	if w, _, err := term.GetSize(int(fd)); err == nil && w > 0 {
		return w
	}
	return fallbackWidth
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}
