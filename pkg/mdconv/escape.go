package mdconv

import (
	"errors"
	"regexp"
	"strings"
)

// Version selects the Telegram Markdown dialect.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
)

// Entity narrows the MarkdownV2 character class to the span being escaped.
// It is ignored for V1.
type Entity string

const (
	Text     Entity = ""
	Pre      Entity = "pre"
	Code     Entity = "code"
	TextLink Entity = "text_link"
)

var (
	ErrInvalidVersion = errors.New("mdconv: markdown version must be 1 or 2")
	ErrInvalidEntity  = errors.New(`mdconv: entity must be "", "pre", "code" or "text_link"`)
)

const (
	v1Chars   = "_*`["
	textChars = "\\_*[]()~`>#+-=|{}.!"
	codeChars = "\\`"
	linkChars = "\\)[]"
)

var (
	codeSpan = regexp.MustCompile("`([^\n]*?)`")
	linkSpan = regexp.MustCompile(`\[(.*?)\]\(((?:https?|tel|mailto):[^()]*)\)`)
)

// Escape escapes text for the given Markdown version and entity type.
//
// Upstream HTML-to-text conversion turns <b> into ** and <s> into ~~; after
// escaping, a line holding an even number of those markers gets them back
// as single * or ~ so Telegram still renders bold and strikethrough.
func Escape(s string, v Version, e Entity) (string, error) {
	chars, err := charClass(v, e)
	if err != nil {
		return "", err
	}
	return escape(s, chars), nil
}

func charClass(v Version, e Entity) (string, error) {
	switch v {
	case V1:
		return v1Chars, nil
	case V2:
		switch e {
		case Text:
			return textChars, nil
		case Pre, Code:
			return codeChars, nil
		case TextLink:
			return linkChars, nil
		default:
			return "", ErrInvalidEntity
		}
	default:
		return "", ErrInvalidVersion
	}
}

func escape(s, chars string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)
	for _, r := range s {
		if strings.ContainsRune(chars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return restoreMarkers(b.String())
}

func restoreMarkers(s string) string {
	if !strings.Contains(s, `\*\*`) && !strings.Contains(s, `\~\~`) {
		return s
	}
	lines := strings.SplitAfter(s, "\n")
	for i, line := range lines {
		lines[i] = restore(restore(line, `\*\*`, "*"), `\~\~`, "~")
	}
	return strings.Join(lines, "")
}

func restore(line, escaped, marker string) string {
	if n := strings.Count(line, escaped); n > 0 && n%2 == 0 {
		return strings.ReplaceAll(line, escaped, marker)
	}
	return line
}

// EscapeSpans escapes text for MarkdownV2 while keeping inline code spans
// and http(s)/tel/mailto links usable. Code interiors and link targets are
// escaped with their narrower character classes, everything else as text.
func EscapeSpans(text string) string {
	var b strings.Builder
	last := 0
	for _, m := range codeSpan.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(escapeLinks(text[last:m[0]]))
		b.WriteByte('`')
		b.WriteString(escape(text[m[2]:m[3]], codeChars))
		b.WriteByte('`')
		last = m[1]
	}
	b.WriteString(escapeLinks(text[last:]))
	return b.String()
}

func escapeLinks(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	last := 0
	for _, m := range linkSpan.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(escape(s[last:m[0]], textChars))
		label := s[m[2]:m[3]]
		if i := strings.IndexByte(label, ']'); i >= 0 {
			label = label[:i]
		}
		b.WriteByte('[')
		b.WriteString(escape(label, textChars))
		b.WriteString("](")
		b.WriteString(escape(s[m[4]:m[5]], linkChars))
		b.WriteByte(')')
		last = m[1]
	}
	b.WriteString(escape(s[last:], textChars))
	return b.String()
}
