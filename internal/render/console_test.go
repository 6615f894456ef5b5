package render

import (
	"bytes"
	"slices"
	"strings"
	"testing"
)

func TestConsoleNoColor(t *testing.T) {
	t.Parallel()

	body := "CHANGED: job\n+added\n-removed\nplain"
	got := slices.Collect(NewConsole(&bytes.Buffer{}, false).Lines(body, 10, false))
	if !slices.Equal(got, strings.Split(body, "\n")) {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestConsoleColor(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		strings.Repeat("=", 10),
		"+added",
		"-removed",
		"ERROR: broken job",
		"NEW: fresh job",
		"plain",
	}, "\n")
	got := slices.Collect(NewConsole(&bytes.Buffer{}, true).Lines(body, 10, false))
	if len(got) != 6 {
		t.Fatalf("want 6 lines, got %d", len(got))
	}
	if got[0] != strings.Repeat("=", 10) {
		t.Fatalf("separator must not be coloured: %q", got[0])
	}
	if !strings.Contains(got[1], "\x1b[") || !strings.Contains(got[1], "+added") {
		t.Fatalf("added line not coloured: %q", got[1])
	}
	if !strings.HasPrefix(got[3], "ERROR: \x1b[") || !strings.Contains(got[3], "broken job") {
		t.Fatalf("error verb not coloured: %q", got[3])
	}
	if !strings.HasPrefix(got[4], "NEW: \x1b[") {
		t.Fatalf("verb not coloured: %q", got[4])
	}
	if got[5] != "plain" {
		t.Fatalf("plain line changed: %q", got[5])
	}
}

func TestConsoleWordDiff(t *testing.T) {
	t.Parallel()

	got := slices.Collect(NewConsole(&bytes.Buffer{}, true).Lines("a [-old-]{+new+} b", 0, true))
	if len(got) != 1 {
		t.Fatalf("want 1 line, got %q", got)
	}
	if !strings.HasPrefix(got[0], "a \x1b[") || !strings.HasSuffix(got[0], " b") {
		t.Fatalf("word diff spans not coloured in place: %q", got[0])
	}
}
