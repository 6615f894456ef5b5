package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"diffreport/internal/config"
	"diffreport/internal/report"
)

var ErrInvalidInput = errors.New("invalid report input")

// document is the on-disk form of a report: the job states of one run plus
// how long the run took. A bare list of states is accepted too.
type document struct {
	Duration string         `json:"duration,omitempty"`
	States   []report.State `json:"states"`
}

// readInput reads path, or in when path is "-" or empty.
func readInput(path string, in io.Reader) ([]byte, string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, "", err
		}
		return b, sniffName(b), nil
	}
	b, err := os.ReadFile(path)
	return b, path, err
}

// sniffName guesses the format of stdin so YAML pipes work without a flag.
func sniffName(b []byte) string {
	t := bytes.TrimSpace(b)
	if len(t) > 0 && (t[0] == '{' || t[0] == '[') {
		return "stdin.json"
	}
	return "stdin.yaml"
}

// decodeReport turns a JSON or YAML report document into a Report carrying
// the given settings.
func decodeReport(name string, data []byte, settings report.Settings) (report.Report, error) {
	jb, err := config.ToJSON(name, data)
	if err != nil {
		return report.Report{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	jb = bytes.TrimSpace(jb)

	var doc document
	if len(jb) > 0 && jb[0] == '[' {
		err = strictDecode(jb, &doc.States)
	} else {
		err = strictDecode(jb, &doc)
	}
	if err != nil {
		return report.Report{}, fmt.Errorf("%w: %s: %v", ErrInvalidInput, name, err)
	}

	for i, s := range doc.States {
		switch s.Verb {
		case report.New, report.Changed, report.ChangedNoReport, report.Unchanged, report.Error:
		default:
			return report.Report{}, fmt.Errorf("%w: state %d: unknown verb %q", ErrInvalidInput, i+1, s.Verb)
		}
		if s.Job.Location() == "" && s.Job.Name == "" {
			return report.Report{}, fmt.Errorf("%w: state %d: job needs a name, url or command", ErrInvalidInput, i+1)
		}
	}

	d, err := config.ParseDurationField("duration", doc.Duration)
	if err != nil {
		return report.Report{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return report.Report{States: doc.States, Duration: d, Settings: settings}, nil
}

func strictDecode(b []byte, v any) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("trailing data")
	}
	return nil
}

// messageSeparator is the line written between the messages of chunk and channel output.
const messageSeparator = "\f"

func writeMessages(w io.Writer, msgs []string) error {
	for i, m := range msgs {
		if i > 0 {
			if _, err := io.WriteString(w, messageSeparator+"\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, strings.TrimRight(m, "\n")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
