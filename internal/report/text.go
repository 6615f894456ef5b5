package report

import (
	"fmt"
	"iter"
	"strings"
)

// Text renders a plain text report, one line (or multi-line block) per
// element. Join the elements with newlines.
func Text(r Report) iter.Seq[string] {
	cfg := r.Settings.Text
	return func(yield func(string) bool) {
		if cfg.Minimal {
			for s := range r.Visible() {
				if !yield(s.Verb.Upper() + ": " + textLocation(s.Job)) {
					return
				}
				if s.Job.Note != "" && !yield(s.Job.Note) {
					return
				}
			}
			return
		}

		var summary, details []string
		for s := range r.Visible() {
			if s.Verb == ChangedNoReport {
				continue
			}
			summary = append(summary, s.Verb.Upper()+": "+s.Job.PrettyName())
			details = append(details, textDetails(s, cfg.LineLength)...)
		}

		var parts []string
		if len(summary) > 0 {
			sep := strings.Repeat("=", cfg.LineLength)
			if sep != "" {
				parts = append(parts, sep)
			}
			for i, line := range summary {
				parts = append(parts, fmt.Sprintf("%02d. %s", i+1, line))
			}
			if sep != "" {
				parts = append(parts, sep)
			}
			parts = append(parts, "")
		}
		if cfg.Details {
			parts = append(parts, details...)
		}
		if len(summary) > 0 && cfg.Footer {
			parts = append(parts, r.footer())
		}
		for _, p := range parts {
			if !yield(p) {
				return
			}
		}
	}
}

func textLocation(j Job) string {
	if j.PrettyName() != j.Location() {
		return j.PrettyName() + " (" + j.Location() + ")"
	}
	return j.Location()
}

func textDetails(s State, lineLength int) []string {
	sep := strings.Repeat("-", lineLength)
	var out []string
	add := func(parts ...string) { out = append(out, parts...) }
	if sep != "" {
		add(sep)
	}
	add(s.Verb.Upper() + ": " + textLocation(s.Job))
	if sep != "" {
		add(sep)
	}
	if s.Job.Note != "" {
		add(s.Job.Note, "")
	}
	if body, ok := s.content(); ok {
		add(body)
		if sep != "" {
			add(sep)
		}
	}
	add("")
	if sep != "" {
		add("")
	}
	return out
}
