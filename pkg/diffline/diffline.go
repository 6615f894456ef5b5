// Package diffline classifies the lines of a unified diff by role.
package diffline

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// Kind is the role of a diff line.
type Kind int

const (
	Context Kind = iota
	Added
	Removed
	HunkHeader
	Info
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case HunkHeader:
		return "hunk_header"
	case Info:
		return "info"
	default:
		return "context"
	}
}

// Line is one classified line of a diff.
type Line struct {
	Kind  Kind
	Text  string // raw line, marker included
	Index int
}

// IsHeader reports whether the line is one of the two preamble lines
// ("--- old", "+++ new") of a unified diff.
func (l Line) IsHeader() bool { return l.Index <= 1 }

// Marker returns the first byte of the raw line, or 0 for an empty line.
func (l Line) Marker() byte {
	if l.Text == "" {
		return 0
	}
	return l.Text[0]
}

// Body returns the line without its leading marker character.
func (l Line) Body() string {
	_, n := utf8.DecodeRuneInString(l.Text)
	return l.Text[n:]
}

// KindOf classifies a raw line by its leading marker only.
func KindOf(raw string) Kind {
	if raw == "" {
		return Context
	}
	switch raw[0] {
	case '+':
		return Added
	case '-':
		return Removed
	case '@':
		return HunkHeader
	case '/':
		return Info
	default:
		return Context
	}
}

// Classify lazily yields the lines of diff in order. The first two lines are
// always HunkHeader, whatever their marker.
func Classify(diff string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		i := 0
		for raw := range Lines(diff) {
			k := KindOf(raw)
			if i <= 1 {
				k = HunkHeader
			}
			if !yield(Line{Kind: k, Text: raw, Index: i}) {
				return
			}
			i++
		}
	}
}

// Lines yields the lines of s without their terminators. "\r\n" counts as a
// single terminator and a trailing newline does not produce an empty line.
func Lines(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for s != "" {
			line, rest, found := strings.Cut(s, "\n")
			if !found {
				rest = ""
			}
			if !yield(strings.TrimSuffix(line, "\r")) {
				return
			}
			s = rest
		}
	}
}
