package report

import (
	"fmt"
	"iter"
	"slices"

	"diffreport/pkg/budget"
	"diffreport/pkg/logx"
)

// TrimmedNotice closes a Markdown report that did not fit its ceiling.
const TrimmedNotice = "*Parts of the report were omitted due to message length.*\n"

// Markdown renders a Markdown report fitted to limit. Join the elements
// with newlines. The room for TrimmedNotice is taken off the ceiling up
// front.
func Markdown(r Report, limit budget.Limit) iter.Seq[string] {
	cfg := r.Settings.Markdown
	if cfg.Minimal {
		return func(yield func(string) bool) {
			for s := range r.Visible() {
				if !yield("* " + s.Verb.Upper() + ": " + textLocation(s.Job)) {
					return
				}
				if s.Job.Note != "" && !yield(s.Job.Note) {
					return
				}
			}
		}
	}

	var b budget.Bundle
	for s := range r.Visible() {
		if s.Verb == ChangedNoReport {
			continue
		}
		b.Summary = append(b.Summary, fmt.Sprintf("%d. %s: %s", len(b.Summary)+1, s.Verb.Upper(), s.Job.PrettyName()))
		if body, ok := s.content(); ok {
			b.Details = append(b.Details, budget.Section{
				Header: "### " + s.Verb.Upper() + ": " + markdownLocation(s.Job),
				Body:   body,
			})
		}
	}
	if len(b.Summary) > 0 && cfg.Footer {
		b.Footer = r.footer()
	}

	if n, ok := limit.Max(); ok {
		limit = budget.MaxLength(n - budget.Len(TrimmedNotice))
	}
	res := budget.Allocate(b, limit)
	if res.Trimmed {
		r.Log.Debug("markdown report trimmed", logx.Int("details", len(b.Details)), logx.Int("kept", len(res.Details)))
	}

	var parts []string
	if len(res.Summary) > 0 {
		parts = append(slices.Clone(res.Summary), "")
	}
	if cfg.Details {
		for _, d := range res.Details {
			parts = append(parts, d.Header, d.Body, "")
		}
	}
	if res.Trimmed {
		parts = append(parts, TrimmedNotice)
	}
	if len(res.Summary) > 0 && cfg.Footer {
		parts = append(parts, res.Footer)
	}
	return slices.Values(parts)
}

func markdownLocation(j Job) string {
	if j.PrettyName() == j.Location() {
		return j.Location()
	}
	if j.IsURL() {
		return "[" + j.PrettyName() + "](" + j.Location() + ")"
	}
	return j.PrettyName() + " (" + j.Location() + ")"
}
