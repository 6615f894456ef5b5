package render

import (
	"io"
	"iter"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var verbPrefixes = []string{"NEW: ", "CHANGED: ", "UNCHANGED: ", "ERROR: "}

// Console colours text report lines for a terminal.
type Console struct {
	color      bool
	red, green lipgloss.Style
	blue       lipgloss.Style
}

// NewConsole returns a colouriser writing ANSI sequences for w. With color
// false every line passes through unchanged.
func NewConsole(w io.Writer, color bool) *Console {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI)
	style := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c)).TabWidth(lipgloss.NoTabConversion)
	}
	return &Console{
		color: color,
		red:   style("9"),
		green: style("10"),
		blue:  style("12"),
	}
}

// Lines colours a joined text report. lineLength is the report's separator
// width; wordDiff enables {+added+}/[-removed-] highlighting.
func (c *Console) Lines(body string, lineLength int, wordDiff bool) iter.Seq[string] {
	var separators []string
	if lineLength > 0 {
		separators = []string{strings.Repeat("=", lineLength), strings.Repeat("-", lineLength), "--"}
	}
	if wordDiff && c.color {
		body = paint(wdiffAdded, body, c.green)
		body = paint(wdiffRemoved, body, c.red)
		separators = append(separators, strings.Repeat("-", 36))
	}
	return func(yield func(string) bool) {
		for line := range strings.Lines(body) {
			line = strings.TrimSuffix(line, "\n")
			if !yield(c.line(line, separators)) {
				return
			}
		}
	}
}

func (c *Console) line(line string, separators []string) string {
	if !c.color {
		return line
	}
	for _, sep := range separators {
		if line == sep {
			return line
		}
	}
	switch {
	case strings.HasPrefix(line, "+"):
		return c.green.Render(line)
	case strings.HasPrefix(line, "-"):
		return c.red.Render(line)
	}
	for _, p := range verbPrefixes {
		if !strings.HasPrefix(line, p) {
			continue
		}
		first, second, _ := strings.Cut(line, " ")
		if p == "ERROR: " {
			return first + " " + c.red.Render(second)
		}
		return first + " " + c.blue.Render(second)
	}
	return line
}

// paint styles every match of re, one line at a time so a span crossing
// lines is not padded into a block.
func paint(re *regexp.Regexp, s string, st lipgloss.Style) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		parts := strings.Split(m, "\n")
		for i, p := range parts {
			if p != "" {
				parts[i] = st.Render(p)
			}
		}
		return strings.Join(parts, "\n")
	})
}
