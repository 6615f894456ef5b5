package channel

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"diffreport/internal/report"
)

func TestTableComplete(t *testing.T) {
	t.Parallel()

	for i, s := range All() {
		if int(s.Kind) != i {
			t.Fatalf("entry %d has kind %d", i, s.Kind)
		}
		if s.Name == "" || s.Doc == "" {
			t.Fatalf("entry %d is incomplete: %+v", i, s)
		}
		if s.Ceiling < 0 {
			t.Fatalf("%s: negative ceiling", s.Name)
		}
		if (s.Strategy == EscapeChunk || s.Strategy == NumberedChunk || s.Strategy == Truncate) && s.Ceiling == 0 {
			t.Fatalf("%s: strategy %s needs a ceiling", s.Name, s.Strategy)
		}
		k, err := ParseKind(s.Name)
		if err != nil || k != s.Kind {
			t.Fatalf("ParseKind(%q) = %v, %v", s.Name, k, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	if k, err := ParseKind(" Slack "); err != nil || k != Webhook {
		t.Fatalf("slack alias: %v %v", k, err)
	}
	if _, err := ParseKind("carrier-pigeon"); !errors.Is(err, ErrUnknownChannel) {
		t.Fatalf("want ErrUnknownChannel, got %v", err)
	}
	if Kind(99).String() != "channel(99)" {
		t.Fatalf("unexpected name for unknown kind")
	}
}

func TestCeilingFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind Kind
		set  Settings
		want int
	}{
		{Telegram, Settings{}, 4096},
		{Telegram, Settings{MaxLength: 100}, 100},
		{Webhook, Settings{WebhookURL: "https://hooks.slack.com/x"}, 40000},
		{Webhook, Settings{WebhookURL: "https://discordapp.com/api/webhooks/1"}, 2000},
		{WebhookMarkdown, Settings{WebhookURL: "https://discord.com/api/webhooks/1"}, 2000},
		{Matrix, Settings{}, 16384},
		{XMPP, Settings{}, 262144},
		{Pushover, Settings{}, 1024},
		{Prowl, Settings{}, 10000},
		{Stdout, Settings{}, 0},
	}
	for _, tc := range cases {
		s, _ := tc.kind.Spec()
		if got := s.CeilingFor(tc.set); got != tc.want {
			t.Fatalf("%s: ceiling %d, want %d", s.Name, got, tc.want)
		}
	}
}

func bigReport() report.Report {
	var diff strings.Builder
	diff.WriteString("--- a\n+++ b\n@@ -1,300 +1,300 @@\n")
	for i := 0; i < 300; i++ {
		diff.WriteString("+added line number with v1.2 (release)!\n")
	}
	return report.Report{
		Settings: report.DefaultSettings(),
		States: []report.State{{
			Verb:    report.Changed,
			Job:     report.Job{Name: "Release notes", URL: "https://example.com/notes"},
			OldData: "x",
			NewData: "y",
			Diff:    diff.String(),
		}},
	}
}

func TestRenderNothingToReport(t *testing.T) {
	t.Parallel()

	r := report.Report{Settings: report.DefaultSettings()}
	for _, s := range All() {
		msgs, err := Render(s.Kind, r, Settings{})
		if err != nil || msgs != nil {
			t.Fatalf("%s: want nil, nil; got %d messages, %v", s.Name, len(msgs), err)
		}
	}
}

func TestRenderTelegram(t *testing.T) {
	t.Parallel()

	msgs, err := Render(Telegram, bigReport(), Settings{MaxLength: 1000})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(msgs) < 2 {
		t.Fatalf("want several chunks, got %d", len(msgs))
	}
	for i, m := range msgs {
		if n := utf8.RuneCountInString(m); n > 1000 {
			t.Fatalf("chunk %d has %d runes", i, n)
		}
	}
	if !strings.Contains(msgs[0], `v1\.2 \(release\)\!`) {
		t.Fatalf("text not escaped for MarkdownV2:\n%s", msgs[0])
	}
	if !strings.Contains(msgs[0], "[Release notes](https://example.com/notes)") {
		t.Fatalf("job link must survive escaping:\n%s", msgs[0])
	}
}

func TestRenderWebhookNumbered(t *testing.T) {
	t.Parallel()

	msgs, err := Render(Webhook, bigReport(), Settings{WebhookURL: "https://discordapp.com/api/webhooks/x"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(msgs) < 2 {
		t.Fatalf("want several chunks, got %d", len(msgs))
	}
	for i, m := range msgs {
		if utf8.RuneCountInString(m) > 2000 {
			t.Fatalf("chunk %d over the discord ceiling", i)
		}
	}
	if !strings.HasPrefix(msgs[0], "(1/") {
		t.Fatalf("chunks must be numbered: %q", msgs[0][:20])
	}
}

func TestRenderMatrixBudget(t *testing.T) {
	t.Parallel()

	msgs, err := Render(Matrix, bigReport(), Settings{MaxLength: 800})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("matrix sends one message, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0], report.TrimmedNotice) {
		t.Fatalf("expected trimmed report:\n%s", msgs[0])
	}
	body, err := FormattedBody(msgs[0])
	if err != nil {
		t.Fatalf("FormattedBody: %v", err)
	}
	if !strings.Contains(body, "<h3>") || !strings.Contains(body, "<em>Parts of the report") {
		t.Fatalf("unexpected html body:\n%s", body)
	}
}

func TestRenderTruncate(t *testing.T) {
	t.Parallel()

	msgs, err := Render(Pushover, bigReport(), Settings{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(msgs) != 1 || utf8.RuneCountInString(msgs[0]) != 1024 {
		t.Fatalf("want one message of 1024 runes, got %d", len(msgs))
	}
}

func TestRenderPerJob(t *testing.T) {
	t.Parallel()

	msgs, err := Render(IFTTT, bigReport(), Settings{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(msgs) != 1 || msgs[0] != "CHANGED: Release notes (https://example.com/notes)" {
		t.Fatalf("got %q", msgs)
	}
}

func TestRenderBrowserHTML(t *testing.T) {
	t.Parallel()

	r := bigReport()
	msgs, err := Render(Browser, r, Settings{})
	if err != nil || len(msgs) != 1 || !strings.HasPrefix(msgs[0], "<!DOCTYPE html>") {
		t.Fatalf("unexpected browser output: %v", err)
	}
	r.Settings.HTML.Diff = "bogus"
	if _, err := Render(Browser, r, Settings{}); !errors.Is(err, report.ErrUnsupportedDiffStyle) {
		t.Fatalf("want ErrUnsupportedDiffStyle, got %v", err)
	}
}
