package render

import (
	"slices"
	"strings"
	"testing"
)

const fakeHead = "-fake head 1\n+fake head 2\n"

func TestHTMLMarkdownRows(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"+Added line", `<tr style="background-color:#d1ffd1;color:#082b08"><td>Added line</td></tr>`},
		{"-Deleted line", `<tr style="background-color:#fff0f0;color:#9c1c1c;text-decoration:line-through"><td>Deleted line</td></tr>`},
		{"@@ -1,1 +1,1 @@", `<tr style="background-color:#fbfbfb"><td style="font-family:monospace">@@ -1,1 +1,1 @@</td></tr>`},
		{"/**Comparison type: Additions only**", `<tr style="background-color:lightyellow"><td style="font-family:monospace">/**Comparison type: Additions only**</td></tr>`},
		{"+* * *", `<tr style="background-color:#d1ffd1;color:#082b08"><td>` + strings.Repeat("-", 80) + `</td></tr>`},
		{"+[Link](https://example.com)", `<tr style="background-color:#d1ffd1;color:#082b08"><td><a style="font-family:inherit" href="https://example.com" rel="noopener" target="_blank">Link</a></td></tr>`},
		{"   Indented text (replace leading spaces)", `<tr><td>&nbsp;&nbsp;Indented text (replace leading spaces)</td></tr>`},
		{" # Heading level 1", `<tr><td><strong>Heading level 1</strong></td></tr>`},
		{" ###### Heading level 6", `<tr><td><strong>Heading level 6</strong></td></tr>`},
		{"   * Bullet point level 1", `<tr><td>&nbsp;&nbsp;● Bullet point level 1</td></tr>`},
		{"     * Bullet point level 2", `<tr><td>&nbsp;&nbsp;&nbsp;&nbsp;⯀ Bullet point level 2</td></tr>`},
		{" *emphasis*", `<tr><td><em>emphasis</em></td></tr>`},
		{" **strong**", `<tr><td><strong>strong</strong></td></tr>`},
		{" ~~strikethrough~~", `<tr><td><del>strikethrough</del></td></tr>`},
		{" | table | row |", `<tr><td>| table | row |</td></tr>`},
		{"\n", `<tr><td></td></tr>`},
	}
	h := NewHTML(Options{Markdown: true})
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := slices.Collect(h.Diff(fakeHead + tc.in))
			if len(got) != 5 {
				t.Fatalf("want 5 parts, got %d: %q", len(got), got)
			}
			if got[3] != tc.want {
				t.Fatalf("row\n got: %s\nwant: %s", got[3], tc.want)
			}
		})
	}
}

func TestHTMLHeaders(t *testing.T) {
	t.Parallel()

	got := slices.Collect(NewHTML(Options{Markdown: true}).Diff(fakeHead + "+Added line"))
	want := []string{
		`<table style="border-collapse:collapse">`,
		`<tr style="color:darkred;font-family:monospace"><td style="font-family:monospace">-fake head 1</td></tr>`,
		`<tr style="color:darkgreen;font-family:monospace"><td style="font-family:monospace">+fake head 2</td></tr>`,
		`<tr style="background-color:#d1ffd1;color:#082b08"><td>Added line</td></tr>`,
		`</table>`,
	}
	if !slices.Equal(got, want) {
		t.Fatalf("got:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestHTMLPaddedTable(t *testing.T) {
	t.Parallel()

	got := slices.Collect(NewHTML(Options{Markdown: true, PaddedTables: true}).Diff(fakeHead + " | table | row |"))
	want := `<tr><td><span style="font-family:monospace;white-space:pre-wrap">| table | row |</span></td></tr>`
	if got[3] != want {
		t.Fatalf("got %s want %s", got[3], want)
	}
}

func TestHTMLPlainLinkified(t *testing.T) {
	t.Parallel()

	got := slices.Collect(NewHTML(Options{}).Diff(fakeHead + "+see https://example.com/a?b=1&c=2. <ok>"))
	if got[0] != `<table style="border-collapse:collapse;font-family:monospace">` {
		t.Fatalf("unexpected opener %q", got[0])
	}
	want := `<tr style="background-color:#d1ffd1;color:#082b08"><td>see <a href="https://example.com/a?b=1&amp;c=2" target="_blank">https://example.com/a?b=1&amp;c=2</a>. &lt;ok&gt;</td></tr>`
	if got[3] != want {
		t.Fatalf("row\n got: %s\nwant: %s", got[3], want)
	}
}

func TestHTMLWordDiff(t *testing.T) {
	t.Parallel()

	got := strings.Join(slices.Collect(NewHTML(Options{WordDiff: true}).Diff("[-old-]{+new+}")), "")
	want := `<span style="font-family:monospace;white-space:pre-wrap">` +
		`<span style="background-color:#fff0f0;color:#9c1c1c;text-decoration:line-through">[-old-]</span>` +
		`<span style="background-color:#d1ffd1;color:#082b08">{+new+}</span></span>`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestHTMLWordDiffAcrossLines(t *testing.T) {
	t.Parallel()

	got := strings.Join(slices.Collect(NewHTML(Options{WordDiff: true}).Diff("a {+x\ny+} <b>")), "")
	want := preWrapTag + `a <span style="` + AddedStyle + `">{+x` + "\n" + `y+}</span> &lt;b&gt;</span>`
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestHTMLStopsEarly(t *testing.T) {
	t.Parallel()

	n := 0
	for range NewHTML(Options{}).Diff(fakeHead + "+a\n+b\n+c") {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("iteration did not stop, n=%d", n)
	}
}

func TestLinkify(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"no links & stuff", "no links &amp; stuff"},
		{"(www.example.org)", `(<a href="http://www.example.org" target="_blank">www.example.org</a>)`},
		{"http://a.b/c, then", `<a href="http://a.b/c" target="_blank">http://a.b/c</a>, then`},
	}
	for _, tc := range cases {
		if got := Linkify(tc.in); got != tc.want {
			t.Fatalf("Linkify(%q)\n got: %s\nwant: %s", tc.in, got, tc.want)
		}
	}
}
