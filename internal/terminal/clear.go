// Package terminal provides prompt helpers for interactive commands: hidden password
// input, plain line input, and erasing an answered prompt.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether both stdin and stderr are attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// width returns the terminal width of stderr, or 80 when unknown.
func width() int {
	if w, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// linesFor returns how many rows text of textLength runes occupies at the given width,
// plus the empty row the cursor sits on after Enter.
func linesFor(textLength, cols int) int {
	if cols <= 0 {
		cols = 80
	}
	rows := (textLength + cols - 1) / cols
	if rows < 1 {
		rows = 1
	}
	return rows + 1
}

// ClearPreviousLines erases an answered prompt (prompt plus typed input, textLength
// runes in total) from w. It is a no-op when the session is not interactive.
func ClearPreviousLines(w io.Writer, textLength int) {
	if !IsInteractive() {
		return
	}
	n := linesFor(textLength, width())
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}
