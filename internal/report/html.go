package report

import (
	"fmt"
	"html"
	"iter"
	"strconv"
	"strings"
	"time"

	"diffreport/internal/render"
	"diffreport/pkg/logx"
)

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<title>%s report</title>
<meta http-equiv="content-type" content="text/html; charset=utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family:Arial,Helvetica,sans-serif;font-size:13px;">`

// HTMLDocument renders a complete HTML document. Parts are meant to be
// joined with newlines. The diff style is checked before anything is
// produced.
func HTMLDocument(r Report) (iter.Seq[string], error) {
	style := r.Settings.HTML.Diff
	if style == "" {
		style = DiffUnified
	}
	if style != DiffUnified && style != DiffTable {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDiffStyle, style)
	}
	p := r.project()
	return func(yield func(string) bool) {
		if !yield(fmt.Sprintf(htmlHead, html.EscapeString(p.Name))) {
			return
		}
		for s := range r.Visible() {
			body, ok := htmlContent(s, style)
			if !ok {
				r.Log.Debug("no html content for job", logx.String("job", s.Job.PrettyName()), logx.String("verb", string(s.Verb)))
				continue
			}
			if !yield(htmlTitle(s)) {
				return
			}
			if s.Job.Note != "" {
				if !yield("<h4>" + html.EscapeString(s.Job.Note) + "</h4>") {
					return
				}
			}
			for part := range body {
				if !yield(part) {
					return
				}
			}
			if !yield("<hr>") {
				return
			}
		}
		yield(htmlFooter(r, p))
	}, nil
}

func htmlTitle(s State) string {
	j := s.Job
	switch {
	case j.IsURL():
		return fmt.Sprintf(`<h3>%s: <a href="%s">%s</a></h3>`,
			s.Verb.Title(), html.EscapeString(j.Location()), html.EscapeString(j.PrettyName()))
	case j.PrettyName() != j.Location():
		return fmt.Sprintf(`<h3>%s: <span title="%s">%s</span></h3>`,
			s.Verb.Title(), html.EscapeString(j.Location()), html.EscapeString(j.PrettyName()))
	default:
		return fmt.Sprintf("<h3>%s: %s</h3>", s.Verb.Title(), html.EscapeString(j.Location()))
	}
}

func htmlContent(s State, style string) (iter.Seq[string], bool) {
	one := func(v string) iter.Seq[string] {
		return func(yield func(string) bool) { yield(v) }
	}
	switch {
	case s.Verb == Error:
		return one(`<pre style="white-space:pre-wrap;color:red;">` + html.EscapeString(strings.TrimSpace(s.Traceback)) + "</pre>"), true
	case s.Verb == Unchanged:
		return one(`<pre style="white-space:pre-wrap">` + html.EscapeString(s.OldData) + "</pre>"), true
	case s.OldData == "" || s.OldData == s.NewData:
		return one("..."), true
	}

	if style == DiffTable {
		t := render.TableDiff{
			FromDesc: stamp(s.OldTimestamp),
			ToDesc:   stamp(s.NewTimestamp),
			Context:  render.DefaultContext,
		}
		return t.Render(s.OldData, s.NewData), true
	}
	if s.Diff == "" {
		return nil, false
	}
	h := render.NewHTML(render.Options{
		Markdown:     s.Job.Markdown,
		PaddedTables: s.Job.PaddedTables,
		WordDiff:     s.Job.WordDiff(),
	})
	return h.Diff(s.Diff), true
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC1123Z)
}

func htmlFooter(r Report, p Project) string {
	n := len(r.States)
	plural := ""
	if n > 1 {
		plural = "s"
	}
	name := html.EscapeString(p.Name)
	if p.URL != "" {
		name = `<a href="` + html.EscapeString(p.URL) + `">` + name + "</a>"
	}
	return `<div style="font-style:italic">` + "\n" +
		"Checked " + strconv.Itoa(n) + " source" + plural + " in " + formatSeconds(r.Duration) + "\n" +
		"seconds with " + name + " " + html.EscapeString(p.Version) + "\n" +
		"</div>\n</body>\n</html>"
}
