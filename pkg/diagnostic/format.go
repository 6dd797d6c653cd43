package diagnostic

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"
)

// Report is the diagnostic set of one document, as printed by a Formatter.
type Report struct {
	Path        string
	Diagnostics []Diagnostic
}

// Formatter writes reports in an output format.
type Formatter interface {
	Format(w io.Writer, reports []Report) error
}

// NewFormatter returns the formatter registered under name ("text" or "json").
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "", "text":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	}
	return nil, errors.Errorf("unknown format %q", name)
}

// TextFormatter prints one line per diagnostic, path:line:col (1 based),
// colored when the output is a terminal.
type TextFormatter struct{}

func (f *TextFormatter) Format(w io.Writer, reports []Report) error {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	warn := color.New(color.FgYellow, color.Bold)

	for _, r := range reports {
		for _, d := range r.Diagnostics {
			_, err := fmt.Fprintf(w, "%s:%d:%d: %s %s %s\n",
				bold.Sprint(r.Path), d.Line+1, d.Start+1,
				warn.Sprint(d.Severity.String()+":"), d.Message,
				faint.Sprintf("[%s]", Source))
			if err != nil {
				return errors.Errorf("writing diagnostic: %w", err)
			}
		}
	}
	return nil
}

// JSONFormatter prints every report as an object with LSP-shaped diagnostics:
//
//	{
//	  "severity": 2,
//	  "message": "message text",
//	  "range": {
//	    "start": { "line": 1, "character": 1 },
//	    "end": { "line": 1, "character": 1 }
//	  }
//	}
type JSONFormatter struct{}

type jsonPlace struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type jsonRange struct {
	Start jsonPlace `json:"start"`
	End   jsonPlace `json:"end"`
}

type jsonDiagnostic struct {
	Range    jsonRange `json:"range"`
	Severity int       `json:"severity"`
	Code     int       `json:"code"`
	Source   string    `json:"source"`
	Message  string    `json:"message"`
}

type jsonReport struct {
	Path        string           `json:"path"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

func (f *JSONFormatter) Format(w io.Writer, reports []Report) error {
	out := make([]jsonReport, 0, len(reports))
	for _, r := range reports {
		jr := jsonReport{Path: r.Path, Diagnostics: make([]jsonDiagnostic, 0, len(r.Diagnostics))}
		for _, d := range r.Diagnostics {
			jr.Diagnostics = append(jr.Diagnostics, jsonDiagnostic{
				Range: jsonRange{
					Start: jsonPlace{Line: d.Line, Character: d.Start},
					End:   jsonPlace{Line: d.Line, Character: d.Stop},
				},
				Severity: int(d.Severity),
				Code:     int(d.Kind),
				Source:   Source,
				Message:  d.Message,
			})
		}
		out = append(out, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Errorf("encoding diagnostics: %w", err)
	}
	return nil
}
