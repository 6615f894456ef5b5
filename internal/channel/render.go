package channel

import (
	"bytes"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"diffreport/internal/report"
	"diffreport/pkg/budget"
	"diffreport/pkg/chunk"
	"diffreport/pkg/logx"
	"diffreport/pkg/mdconv"
)

// Render produces the messages of channel k for r, in delivery order. It
// returns nil, nil when the report has nothing to show.
func Render(k Kind, r report.Report, set Settings) ([]string, error) {
	spec, ok := k.Spec()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, int(k))
	}
	log := r.Log.With(logx.String("channel", spec.Name))
	if r.Empty() {
		log.Debug("nothing to report")
		return nil, nil
	}
	ceiling := spec.CeilingFor(set)

	if spec.Strategy == PerJob {
		var out []string
		for s := range r.Visible() {
			out = append(out, s.Verb.Upper()+": "+s.Job.PrettyName()+" ("+s.Job.Location()+")")
		}
		return out, nil
	}

	var text string
	switch spec.Format {
	case FormatMarkdown:
		limit := budget.Unlimited()
		if spec.Strategy == BudgetOnly && ceiling > 0 {
			limit = budget.MaxLength(ceiling)
		}
		text = join(report.Markdown(r, limit))
	case FormatHTML:
		parts, err := report.HTMLDocument(r)
		if err != nil {
			return nil, err
		}
		text = join(parts)
	default:
		text = join(report.Text(r))
	}
	if text == "" {
		log.Debug("nothing to report")
		return nil, nil
	}

	var out []string
	switch spec.Strategy {
	case EscapeChunk:
		out = slices.Collect(chunk.Split(mdconv.EscapeSpans(text), ceiling))
	case NumberedChunk:
		for _, c := range chunk.Numbered(text, ceiling) {
			out = append(out, c.Text)
		}
	case Truncate:
		out = []string{chunk.Truncate(text, ceiling)}
	default:
		out = []string{text}
	}
	log.Debug("rendered", logx.Int("messages", len(out)), logx.Int("ceiling", ceiling))
	return out, nil
}

func join(seq iter.Seq[string]) string {
	return strings.Join(slices.Collect(seq), "\n")
}

var formattedBody = goldmark.New(goldmark.WithExtensions(extension.GFM))

// FormattedBody converts a Markdown message to the HTML body sent alongside
// it on channels that accept both (Matrix).
func FormattedBody(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := formattedBody.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("channel: convert markdown: %w", err)
	}
	return buf.String(), nil
}
