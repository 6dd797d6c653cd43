// Package diagnostic reports placeholders that are empty or reference an
// unknown translation key, and keeps those reports current across edits
// without rescanning the whole document.
package diagnostic

import (
	"fmt"

	"github.com/walteh/html-translator/pkg/placeholder"
	"github.com/walteh/html-translator/pkg/translation"
)

// Source is attached to every diagnostic shown to the user.
const Source = "HTML translator"

// Kind doubles as the diagnostic code on the wire.
type Kind int

const (
	KindEmpty Kind = iota
	KindNonExistent
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNonExistent:
		return "nonexistent"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Severity uses the LSP numbering.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic is one report on a single line. Start and Stop are byte columns;
// an Empty diagnostic is zero-width at the inner start column.
type Diagnostic struct {
	Line     int
	Start    int
	Stop     int
	Message  string
	Severity Severity
	Kind     Kind
	// Key is the offending inner text of a NonExistent diagnostic.
	Key string
}

func newEmpty(line, col int) Diagnostic {
	return Diagnostic{
		Line:     line,
		Start:    col,
		Stop:     col,
		Message:  "No translated text specified",
		Severity: SeverityWarning,
		Kind:     KindEmpty,
	}
}

func newNonExistent(line, start, stop int, key string) Diagnostic {
	return Diagnostic{
		Line:     line,
		Start:    start,
		Stop:     stop,
		Message:  fmt.Sprintf("%q is not a valid translated text", key),
		Severity: SeverityWarning,
		Kind:     KindNonExistent,
		Key:      key,
	}
}

// shifted returns a copy of d moved delta lines.
func (d Diagnostic) shifted(delta int) Diagnostic {
	d.Line += delta
	return d
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d-%d %s: %s", d.Line, d.Start, d.Stop, d.Severity, d.Message)
}

// DiagnoseLine appends the diagnostics for line (numbered index) to dst.
func DiagnoseLine(dst []Diagnostic, line string, index int, rec *translation.Record, d placeholder.Delimiters) []Diagnostic {
	for _, tok := range placeholder.Locate(line, d) {
		if tok.Empty {
			dst = append(dst, newEmpty(index, tok.Start))
			continue
		}
		if !rec.Has(tok.Inner) {
			dst = append(dst, newNonExistent(index, tok.Start, tok.Stop, tok.Inner))
		}
	}
	return dst
}

// DiagnoseDocument runs a full scan. The result is never nil for a valid
// record and nil when rec is missing or invalid.
func DiagnoseDocument(lines []string, rec *translation.Record, d placeholder.Delimiters) []Diagnostic {
	if rec == nil || !rec.Valid {
		return nil
	}
	return diagnoseRange(make([]Diagnostic, 0), lines, 0, len(lines), rec, d)
}

// diagnoseRange appends the diagnostics of lines [from, to), clamped to the document.
func diagnoseRange(dst []Diagnostic, lines []string, from, to int, rec *translation.Record, d placeholder.Delimiters) []Diagnostic {
	from = max(from, 0)
	to = min(to, len(lines))
	for i := from; i < to; i++ {
		dst = DiagnoseLine(dst, lines[i], i, rec, d)
	}
	return dst
}
