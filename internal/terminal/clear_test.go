package terminal

import (
	"bufio"
	"io"
	"strings"
	"testing"
)

func TestClearSequence(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		width    int
		wantUps  int
		wantClrs int
	}{
		{"empty", 0, 80, 1, 2},
		{"one line", 20, 80, 1, 2},
		{"wrapped", 170, 80, 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := clearSequence(tt.length, tt.width)
			if got := strings.Count(seq, "\x1b[1A"); got != tt.wantUps {
				t.Errorf("moves up = %d, want %d", got, tt.wantUps)
			}
			if got := strings.Count(seq, "\x1b[2K"); got != tt.wantClrs {
				t.Errorf("clears = %d, want %d", got, tt.wantClrs)
			}
		})
	}
}

func TestReadLine(t *testing.T) {
	var out strings.Builder
	got, err := ReadLine(&out, bufio.NewReader(strings.NewReader("  client-1 \nrest")), "Client ID: ")
	if err != nil {
		t.Fatalf("ReadLine() error = %v", err)
	}
	if got != "client-1" || out.String() != "Client ID: " {
		t.Fatalf("got %q, prompt %q", got, out.String())
	}

	got, err = ReadLine(io.Discard, bufio.NewReader(strings.NewReader("no-newline")), "")
	if err != nil || got != "no-newline" {
		t.Fatalf("ReadLine() at EOF = %q, %v", got, err)
	}

	if _, err := ReadLine(io.Discard, bufio.NewReader(strings.NewReader("")), ""); err == nil {
		t.Fatal("expected error on empty input")
	}
}
