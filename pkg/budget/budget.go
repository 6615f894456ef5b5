// Package budget shares a message length ceiling between the summary,
// details and footer of a report.
//
// Lengths are counted in runes. The package does not know about channels;
// callers pass the ceiling of the channel they render for.
package budget

import (
	"strings"
	"unicode/utf8"
)

// TrimNotice is prepended to a body that had to be cut.
const TrimNotice = "*diff trimmed*\n"

// Limit is an optional ceiling. The zero value is unset. Zero and negative
// ceilings are valid and trim everything they cannot hold.
type Limit struct {
	n   int
	set bool
}

func Unlimited() Limit { return Limit{} }

func MaxLength(n int) Limit { return Limit{n: n, set: true} }

// Max returns the ceiling and whether one is set.
func (l Limit) Max() (int, bool) { return l.n, l.set }

// Section is one job's part of the details: a header line and its body.
type Section struct {
	Header string
	Body   string
}

// Bundle holds the budgetable parts of a report in delivery order.
type Bundle struct {
	Summary []string
	Details []Section
	Footer  string
}

// Result is the bundle after allocation.
type Result struct {
	Trimmed bool
	Summary []string
	Details []Section
	Footer  string
}

// Len returns the length of s in runes.
func Len(s string) int { return utf8.RuneCountInString(s) }

// Allocate fits b into l.
//
// The summary and footer are kept whole or not at all (the footer may be
// cut when nothing else fits). Headers of all details must fit before any
// body is considered. Bodies then share what is left: each gets an equal
// share of the remaining space, and whatever a short body does not use
// flows to the bodies after it. A body that cannot be trimmed into its
// share is dropped, keeping its header.
func Allocate(b Bundle, l Limit) Result {
	ceiling, ok := l.Max()
	if !ok {
		details := make([]Section, len(b.Details))
		for i, d := range b.Details {
			_, body := TrimBody(d.Body, Unlimited())
			details[i] = Section{Header: d.Header, Body: body}
		}
		return Result{Summary: b.Summary, Details: details, Footer: b.Footer}
	}

	summaryLen := 0
	if len(b.Summary) > 0 {
		for _, s := range b.Summary {
			summaryLen += Len(s)
		}
		summaryLen += len(b.Summary) - 1
	}
	footerLen := Len(b.Footer)

	switch {
	case summaryLen > ceiling:
		return Result{Trimmed: true}
	case footerLen > ceiling-summaryLen:
		return Result{Trimmed: true, Summary: b.Summary, Footer: truncate(b.Footer, ceiling-summaryLen)}
	case len(b.Details) == 0:
		return Result{Summary: b.Summary, Footer: b.Footer}
	}

	remaining := ceiling - summaryLen - footerLen
	headersLen := 0
	for _, d := range b.Details {
		headersLen += Len(d.Header)
	}
	if headersLen > remaining {
		return Result{Trimmed: true, Summary: b.Summary, Footer: b.Footer}
	}
	remaining -= headersLen

	res := Result{Summary: b.Summary, Footer: b.Footer, Details: make([]Section, 0, len(b.Details))}
	unprocessed := len(b.Details)
	for _, d := range b.Details {
		perItem := remaining / unprocessed
		// One rune of the share is kept for the joining newline.
		cut, body := TrimBody(d.Body, MaxLength(perItem-1))
		n := Len(body)
		if cut {
			res.Trimmed = true
		}
		if n > perItem {
			body, n = "", 0
			res.Trimmed = true
		}
		res.Details = append(res.Details, Section{Header: d.Header, Body: body})
		remaining -= n
		unprocessed--
	}
	return res
}

// TrimBody formats body for a Markdown report and cuts it to l.
//
// Unified diffs (bodies starting with "+++", "---" or "...") get their two
// file header lines and every "@@ " hunk line wrapped in backticks. A body
// over the ceiling is cut at the last line break that leaves room for
// TrimNotice, or mid-line when the first line alone is too long, and the
// notice is prepended. Ceilings below the notice length leave only the
// notice.
func TrimBody(body string, l Limit) (bool, string) {
	if isDiff(body) {
		body = quoteDiffHeaders(body)
	}
	ceiling, ok := l.Max()
	if !ok || Len(body) <= ceiling {
		return false, body
	}
	target := ceiling - Len(TrimNotice)
	if target < 0 {
		target = 0
	}
	r := []rune(body)
	if target > len(r) {
		target = len(r)
	}
	end := target
	for i := target - 1; i >= 0; i-- {
		if r[i] == '\n' {
			end = i
			break
		}
	}
	return true, TrimNotice + string(r[:end])
}

func isDiff(s string) bool {
	return strings.HasPrefix(s, "+++") || strings.HasPrefix(s, "---") || strings.HasPrefix(s, "...")
}

func quoteDiffHeaders(s string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, line := range lines {
		if i <= 1 || strings.HasPrefix(line, "@@ ") {
			lines[i] = "`" + line + "`"
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
