// Package chunk cuts rendered text into messages of bounded length.
//
// Splitting works on whole lines and keeps ``` code fences balanced: a
// chunk that ends inside a fence is closed with ``` and the next chunk
// reopens it. Lengths are counted in runes.
package chunk

import (
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	fence       = "```"
	reopenFence = fence + "\n"
)

// Chunk is one numbered part of a split text. Seq starts at 1.
type Chunk struct {
	Text string
	Seq  int
}

// Split lazily cuts text into chunks of at most limit runes. Lines are
// kept whole unless a single line does not fit an empty chunk, in which
// case it is hard-split. The bound holds for limit >= 8; smaller ceilings
// still make progress one rune at a time. A limit <= 0 means no ceiling.
//
// The last chunk is always yielded, so an empty text gives one empty
// chunk. The sequence can be ranged over more than once.
func Split(text string, limit int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if limit <= 0 {
			yield(text)
			return
		}
		s := splitter{max: limit, yield: yield}
		for line := range strings.Lines(text) {
			if !s.push(line) {
				return
			}
		}
		yield(s.cur.String())
	}
}

type splitter struct {
	max     int
	yield   func(string) bool
	cur     strings.Builder
	curLen  int
	content bool // cur holds more than a reopened fence
	open    bool // cur ends inside a fence
}

func (s *splitter) push(line string) bool {
	for line != "" {
		n := utf8.RuneCountInString(line)
		reserve := 0
		if s.open != togglesFence(line) {
			reserve = len(fence)
		}
		if s.content && s.curLen+n+reserve > s.max {
			if !s.flush() {
				return false
			}
		}
		room := s.max - s.curLen - reserve
		if n <= room {
			s.add(line, n)
			return true
		}
		room = max(room, 1)
		head, tail := cutRunes(line, room)
		s.add(head, room)
		if !s.flush() {
			return false
		}
		line = tail
	}
	return true
}

func (s *splitter) add(piece string, n int) {
	s.cur.WriteString(piece)
	s.curLen += n
	s.content = true
	if togglesFence(piece) {
		s.open = !s.open
	}
}

func (s *splitter) flush() bool {
	if s.open {
		s.cur.WriteString(fence)
	}
	if !s.yield(s.cur.String()) {
		return false
	}
	s.cur.Reset()
	s.curLen = 0
	s.content = false
	if s.open {
		s.cur.WriteString(reopenFence)
		s.curLen = len(reopenFence)
	}
	return true
}

func togglesFence(line string) bool {
	return strings.Count(line, fence)%2 == 1
}

func cutRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

// Numbered splits text like Split and prefixes every chunk with "(i/N) ",
// keeping prefixed chunks within limit. A text that fits one chunk is
// returned unnumbered.
func Numbered(text string, limit int) []Chunk {
	parts := collect(Split(text, limit))
	if len(parts) <= 1 {
		return wrap(parts, false)
	}
	digits := len(strconv.Itoa(len(parts)))
	for {
		// "(" + i + "/" + N + ") "
		room := max(limit-(4+2*digits), 1)
		parts = collect(Split(text, room))
		if d := len(strconv.Itoa(len(parts))); d > digits {
			digits = d
			continue
		}
		break
	}
	return wrap(parts, len(parts) > 1)
}

func collect(seq iter.Seq[string]) []string {
	var out []string
	for s := range seq {
		out = append(out, s)
	}
	return out
}

func wrap(parts []string, number bool) []Chunk {
	out := make([]Chunk, len(parts))
	total := strconv.Itoa(len(parts))
	for i, p := range parts {
		if number {
			p = "(" + strconv.Itoa(i+1) + "/" + total + ") " + p
		}
		out[i] = Chunk{Text: p, Seq: i + 1}
	}
	return out
}

// Truncate cuts text to at most limit runes. A limit <= 0 means no ceiling.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	head, _ := cutRunes(text, limit)
	return head
}
