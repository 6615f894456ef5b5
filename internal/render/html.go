package render

import (
	"html"
	"iter"
	"regexp"

	"diffreport/pkg/diffline"
	"diffreport/pkg/mdconv"
)

const (
	AddedStyle   = "background-color:#d1ffd1;color:#082b08"
	RemovedStyle = "background-color:#fff0f0;color:#9c1c1c;text-decoration:line-through"
	HunkStyle    = "background-color:#fbfbfb"
	InfoStyle    = "background-color:lightyellow"

	monospace  = "font-family:monospace"
	preWrapTag = `<span style="font-family:monospace;white-space:pre-wrap">`
)

var (
	wdiffAdded   = regexp.MustCompile(`(?s)\{\+.*?\+\}`)
	wdiffRemoved = regexp.MustCompile(`(?s)\[-.*?-\]`)
)

// Options describes the job whose diff is rendered.
type Options struct {
	Markdown     bool // job content is Markdown (e.g. from an html2text filter)
	PaddedTables bool
	WordDiff     bool // diff comes from wdiff: {+added+} and [-removed-] tokens
}

// HTML renders diffs as HTML fragments.
type HTML struct {
	opts Options
	md   *mdconv.Transcoder
}

func NewHTML(opts Options) *HTML {
	h := &HTML{opts: opts}
	if opts.Markdown {
		h.md = mdconv.New(mdconv.Options{PaddedTables: opts.PaddedTables})
	}
	return h
}

// Diff yields the markup for diff: a table opener, one row per line and the
// closer, or a single pre-wrapped span in word-diff mode.
func (h *HTML) Diff(diff string) iter.Seq[string] {
	if h.opts.WordDiff {
		return wordDiff(diff)
	}
	return func(yield func(string) bool) {
		open := `<table style="border-collapse:collapse;font-family:monospace">`
		if h.opts.Markdown {
			open = `<table style="border-collapse:collapse">`
		}
		if !yield(open) {
			return
		}
		for l := range diffline.Classify(diff) {
			if !yield(h.Row(l)) {
				return
			}
		}
		yield("</table>")
	}
}

// Row renders one classified line as a table row.
func (h *HTML) Row(l diffline.Line) string {
	tr := "<tr>"
	if style := RowStyle(l); style != "" {
		tr = `<tr style="` + style + `">`
	}
	if l.IsHeader() || l.Kind == diffline.HunkHeader || l.Kind == diffline.Info {
		return tr + `<td style="font-family:monospace">` + html.EscapeString(l.Text) + "</td></tr>"
	}
	return tr + "<td>" + h.cell(l.Body()) + "</td></tr>"
}

func (h *HTML) cell(body string) string {
	if h.md != nil {
		return h.md.ToHTML(body)
	}
	return Linkify(body)
}

// RowStyle returns the inline style of the row for l, or "" for plain
// context lines.
func RowStyle(l diffline.Line) string {
	if l.IsHeader() {
		switch l.Marker() {
		case '+':
			return "color:darkgreen;" + monospace
		case '-':
			return "color:darkred;" + monospace
		case '@':
			return HunkStyle + ";" + monospace
		case '/':
			return InfoStyle + ";" + monospace
		default:
			return monospace
		}
	}
	switch l.Kind {
	case diffline.Added:
		return AddedStyle
	case diffline.Removed:
		return RemovedStyle
	case diffline.HunkHeader:
		return HunkStyle
	case diffline.Info:
		return InfoStyle
	default:
		return ""
	}
}

func wordDiff(diff string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(preWrapTag) {
			return
		}
		s := html.EscapeString(diff)
		s = wdiffAdded.ReplaceAllString(s, `<span style="`+AddedStyle+`">$0</span>`)
		s = wdiffRemoved.ReplaceAllString(s, `<span style="`+RemovedStyle+`">$0</span>`)
		if !yield(s) {
			return
		}
		yield("</span>")
	}
}
