// Package report builds HTML, text and Markdown reports from the states of
// monitored jobs.
package report

import (
	"errors"
	"iter"
	"strconv"
	"strings"
	"time"

	"diffreport/pkg/logx"
)

var ErrUnsupportedDiffStyle = errors.New("report: unsupported diff style")

// Verb is the outcome of one job run.
type Verb string

const (
	New             Verb = "new"
	Changed         Verb = "changed"
	ChangedNoReport Verb = "changed,no_report"
	Unchanged       Verb = "unchanged"
	Error           Verb = "error"
)

// Upper returns the verb as shown in summaries, e.g. "CHANGED".
func (v Verb) Upper() string { return strings.ToUpper(string(v)) }

// Title returns the verb with every word capitalised, e.g. "Changed".
func (v Verb) Title() string {
	b := []byte(v)
	start := true
	for i, c := range b {
		isLetter := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
		if isLetter && start && c >= 'a' {
			b[i] = c - 'a' + 'A'
		}
		start = !isLetter
	}
	return string(b)
}

// Job describes a monitored source.
type Job struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	Command string `json:"command,omitempty"`
	Note    string `json:"note,omitempty"`

	Markdown     bool   `json:"markdown,omitempty"`
	PaddedTables bool   `json:"markdown_padded_tables,omitempty"`
	DiffTool     string `json:"diff_tool,omitempty"`
}

// IsURL reports whether the job watches a URL (as opposed to a command).
func (j Job) IsURL() bool { return j.URL != "" }

// Location is the URL or command of the job.
func (j Job) Location() string {
	if j.URL != "" {
		return j.URL
	}
	return j.Command
}

// PrettyName is the job's name, falling back to its location.
func (j Job) PrettyName() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Location()
}

// WordDiff reports whether the job's diff comes from wdiff.
func (j Job) WordDiff() bool { return strings.HasPrefix(j.DiffTool, "wdiff") }

// State is the result of one job run. An empty OldData means there was no
// previous snapshot.
type State struct {
	Verb      Verb   `json:"verb"`
	Job       Job    `json:"job"`
	OldData   string `json:"old_data,omitempty"`
	NewData   string `json:"new_data,omitempty"`
	Diff      string `json:"diff,omitempty"`
	Traceback string `json:"traceback,omitempty"`

	OldTimestamp time.Time `json:"old_timestamp,omitzero"`
	NewTimestamp time.Time `json:"new_timestamp,omitzero"`
}

// Display selects which states appear in a report.
type Display struct {
	New       bool `json:"new"`
	Changed   bool `json:"changed"`
	Unchanged bool `json:"unchanged"`
	Error     bool `json:"error"`
	// EmptyDiff keeps changed jobs whose diff came out empty (e.g. after
	// diff filters).
	EmptyDiff bool `json:"empty_diff"`
}

type HTMLSettings struct {
	Diff string `json:"diff"` // "unified" or "table"
}

type TextSettings struct {
	LineLength int  `json:"line_length"`
	Details    bool `json:"details"`
	Footer     bool `json:"footer"`
	Minimal    bool `json:"minimal"`
}

type MarkdownSettings struct {
	Details bool `json:"details"`
	Footer  bool `json:"footer"`
	Minimal bool `json:"minimal"`
}

// Settings are the report options shared by all channels.
type Settings struct {
	Display  Display          `json:"display"`
	HTML     HTMLSettings     `json:"html"`
	Text     TextSettings     `json:"text"`
	Markdown MarkdownSettings `json:"markdown"`
}

// DefaultSettings returns the settings used when a config omits them.
func DefaultSettings() Settings {
	return Settings{
		Display:  Display{New: true, Changed: true, Error: true, EmptyDiff: true},
		HTML:     HTMLSettings{Diff: DiffUnified},
		Text:     TextSettings{LineLength: 75, Details: true, Footer: true},
		Markdown: MarkdownSettings{Details: true, Footer: true},
	}
}

const (
	DiffUnified = "unified"
	DiffTable   = "table"
)

// Project identifies the producer in report footers.
type Project struct {
	Name    string
	Version string
	URL     string
}

// DefaultProject is used when Report.Project is empty.
var DefaultProject = Project{Name: "diffreport", Version: "dev"}

// Report is a set of job states rendered together.
type Report struct {
	States   []State
	Duration time.Duration
	Settings Settings
	Project  Project
	Log      logx.Logger
}

func (r Report) project() Project {
	if r.Project.Name == "" {
		return DefaultProject
	}
	return r.Project
}

// Visible yields the states selected by the display settings, in order.
func (r Report) Visible() iter.Seq[State] {
	return func(yield func(State) bool) {
		d := r.Settings.Display
		for _, s := range r.States {
			if s.Verb == Changed && !d.EmptyDiff && s.Diff == "" {
				r.Log.Debug("hiding changed job with empty diff", logx.String("job", s.Job.PrettyName()))
				continue
			}
			if !d.shows(s.Verb) {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

// Empty reports whether no state is visible.
func (r Report) Empty() bool {
	for range r.Visible() {
		return false
	}
	return true
}

func (d Display) shows(v Verb) bool {
	switch v {
	case New:
		return d.New
	case Changed, ChangedNoReport:
		return d.Changed
	case Unchanged:
		return d.Unchanged
	case Error:
		return d.Error
	default:
		return false
	}
}

// content is the job body of text and Markdown reports. ok is false when
// there is nothing to show.
func (s State) content() (string, bool) {
	switch {
	case s.Verb == Error:
		return strings.TrimSpace(s.Traceback), true
	case s.Verb == Unchanged:
		return s.OldData, true
	case s.OldData == "" || s.OldData == s.NewData:
		return "", false
	default:
		return s.Diff, true
	}
}

// footer returns "Checked N sources in D seconds with NAME VERSION".
func (r Report) footer() string {
	n := len(r.States)
	plural := ""
	if n > 1 {
		plural = "s"
	}
	p := r.project()
	return "--\nChecked " + strconv.Itoa(n) + " source" + plural + " in " + formatSeconds(r.Duration) +
		" seconds with " + p.Name + " " + p.Version
}

// formatSeconds shows two significant digits below ten seconds and whole
// seconds above.
func formatSeconds(d time.Duration) string {
	s := d.Seconds()
	if s < 10 {
		return strconv.FormatFloat(s, 'g', 2, 64)
	}
	return strconv.FormatFloat(s, 'f', 0, 64)
}
