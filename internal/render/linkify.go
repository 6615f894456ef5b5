package render

import (
	"html"
	"regexp"
	"strings"
)

var bareURL = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+`)

// Linkify HTML-escapes text and turns bare http(s) and www. URLs into
// anchors that open in a new tab. Trailing punctuation is left outside the
// link.
func Linkify(text string) string {
	var b strings.Builder
	last := 0
	for _, m := range bareURL.FindAllStringIndex(text, -1) {
		start, end := m[0], m[1]
		end = start + len(strings.TrimRight(text[start:end], ".,;:!?)]}"))
		if end == start {
			continue
		}
		b.WriteString(html.EscapeString(text[last:start]))
		u := text[start:end]
		href := u
		if strings.HasPrefix(strings.ToLower(u), "www.") {
			href = "http://" + u
		}
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(href))
		b.WriteString(`" target="_blank">`)
		b.WriteString(html.EscapeString(u))
		b.WriteString("</a>")
		last = end
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
