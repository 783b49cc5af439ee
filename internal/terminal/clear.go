// Package terminal provides utilities for terminal operations such as clearing text
// and reading secrets without echo.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// ClearPreviousLines clears textLength characters of previously printed text from w.
// It derives the number of wrapped lines from the terminal width (80 when unknown),
// then moves up and clears each line, plus the line left by Enter.
func ClearPreviousLines(w io.Writer, textLength int) {
	termWidth := 80
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		termWidth = width
	}
	fmt.Fprint(w, clearSequence(textLength, termWidth))
}

func clearSequence(textLength, termWidth int) string {
	totalLines := int(math.Ceil(float64(textLength) / float64(termWidth)))
	if totalLines < 1 {
		totalLines = 1
	}
	linesToClear := totalLines + 1

	var b strings.Builder
	for i := 0; i < linesToClear; i++ {
		b.WriteString("\r\x1b[2K")
		if i < linesToClear-1 {
			b.WriteString("\x1b[1A")
		}
	}
	return b.String()
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadLine prints prompt to w and reads one line from r.
func ReadLine(w io.Writer, r *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := r.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret prints prompt to w and reads a line from the stdin terminal without echo.
// When stdin is not a terminal it falls back to a plain line read from r.
func ReadSecret(w io.Writer, r *bufio.Reader, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ReadLine(w, r, prompt)
	}
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
