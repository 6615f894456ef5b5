package render

import (
	"fmt"
	"html"
	"iter"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	tableAdded   = "color:green;background-color:lightgreen"
	tableRemoved = "color:red;background-color:lightred"
	tableChanged = "color:orange;background-color:lightyellow"
	cellStyle    = `style="font-family:monospace"`
)

// DefaultContext is the number of unchanged lines kept around a change.
const DefaultContext = 3

// TableDiff renders old and new contents side by side.
type TableDiff struct {
	FromDesc string // column title of the old side, e.g. its timestamp
	ToDesc   string
	// Context is the number of unchanged lines kept around each change. A
	// negative value keeps every line.
	Context int
}

type side struct {
	no   int // 1-based line number, 0 when the side is empty
	text string
	mark string // span style for the whole line, "" for unchanged
	html string // pre-rendered inline diff, overrides text and mark
}

type tableRow struct {
	old, new side
	changed  bool
}

// Render yields the table markup. It yields a single table with a "No
// Differences Found" row when the contents are equal.
func (t TableDiff) Render(oldText, newText string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(`<table style="border-collapse:collapse;font-family:monospace" rules="groups">`) {
			return
		}
		head := fmt.Sprintf(`<thead><tr><th %[1]s></th><th %[1]s>%[2]s</th><th %[1]s></th><th %[1]s>%[3]s</th></tr></thead>`,
			cellStyle, html.EscapeString(t.FromDesc), html.EscapeString(t.ToDesc))
		if !yield(head) || !yield("<tbody>") {
			return
		}
		rows := pairRows(oldText, newText)
		if !anyChanged(rows) {
			if !yield(fmt.Sprintf(`<tr><td %s colspan="4">No Differences Found</td></tr>`, cellStyle)) {
				return
			}
		} else {
			for s := range t.visible(rows) {
				if !yield(s) {
					return
				}
			}
		}
		if !yield("</tbody>") {
			return
		}
		yield("</table>")
	}
}

func (t TableDiff) visible(rows []tableRow) iter.Seq[string] {
	return func(yield func(string) bool) {
		keep := make([]bool, len(rows))
		for i, r := range rows {
			if !r.changed {
				if t.Context < 0 {
					keep[i] = true
				}
				continue
			}
			lo, hi := max(0, i-t.Context), min(len(rows)-1, i+t.Context)
			for j := lo; j <= hi; j++ {
				keep[j] = true
			}
		}
		skipped := fmt.Sprintf(`</tbody><tbody><tr><td %s colspan="4">...</td></tr>`, cellStyle)
		gap := false
		for i, r := range rows {
			if !keep[i] {
				gap = true
				continue
			}
			if gap {
				if !yield(skipped) {
					return
				}
				gap = false
			}
			if !yield(r.html()) {
				return
			}
		}
		if gap {
			yield(skipped)
		}
	}
}

func (r tableRow) html() string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, s := range [2]side{r.old, r.new} {
		no := ""
		if s.no > 0 {
			no = fmt.Sprint(s.no)
		}
		fmt.Fprintf(&b, `<td %s>%s</td><td %s>`, cellStyle, no, cellStyle)
		switch {
		case s.html != "":
			b.WriteString(s.html)
		case s.mark != "":
			fmt.Fprintf(&b, `<span style="%s">%s</span>`, s.mark, html.EscapeString(s.text))
		default:
			b.WriteString(html.EscapeString(s.text))
		}
		b.WriteString("</td>")
	}
	b.WriteString("</tr>")
	return b.String()
}

func anyChanged(rows []tableRow) bool {
	for _, r := range rows {
		if r.changed {
			return true
		}
	}
	return false
}

// pairRows runs a line-level diff and lines up both sides. A deletion
// directly followed by an insertion is shown as paired replacement rows
// with an inline character diff.
func pairRows(oldText, newText string) []tableRow {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var (
		rows     []tableRow
		oldNo    int
		newNo    int
		pendingD []string
	)
	flush := func(inserted []string) {
		n := max(len(pendingD), len(inserted))
		for i := 0; i < n; i++ {
			var r tableRow
			r.changed = true
			switch {
			case i < len(pendingD) && i < len(inserted):
				oldNo++
				newNo++
				r.old.no, r.new.no = oldNo, newNo
				r.old.html, r.new.html = inlineDiff(dmp, pendingD[i], inserted[i])
			case i < len(pendingD):
				oldNo++
				r.old = side{no: oldNo, text: pendingD[i], mark: tableRemoved}
			default:
				newNo++
				r.new = side{no: newNo, text: inserted[i], mark: tableAdded}
			}
			rows = append(rows, r)
		}
		pendingD = nil
	}

	for _, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			flush(nil)
			pendingD = text
		case diffmatchpatch.DiffInsert:
			flush(text)
		case diffmatchpatch.DiffEqual:
			flush(nil)
			for _, l := range text {
				oldNo++
				newNo++
				rows = append(rows, tableRow{old: side{no: oldNo, text: l}, new: side{no: newNo, text: l}})
			}
		}
	}
	flush(nil)
	return rows
}

func inlineDiff(dmp *diffmatchpatch.DiffMatchPatch, oldLine, newLine string) (string, string) {
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldLine, newLine, false))
	var o, n strings.Builder
	for _, d := range diffs {
		esc := html.EscapeString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			o.WriteString(esc)
			n.WriteString(esc)
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&o, `<span style="%s">%s</span>`, tableChanged, esc)
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(&n, `<span style="%s">%s</span>`, tableChanged, esc)
		}
	}
	// An empty string would fall back to the plain text of the side.
	return nonEmpty(o.String()), nonEmpty(n.String())
}

func nonEmpty(s string) string {
	if s == "" {
		return "&nbsp;"
	}
	return s
}

// splitLines splits s into lines without terminators; a trailing newline
// does not produce an empty line.
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}
