package diagnostic

import (
	"strings"

	"github.com/walteh/html-translator/pkg/placeholder"
	"github.com/walteh/html-translator/pkg/position"
	"github.com/walteh/html-translator/pkg/scan"
	"github.com/walteh/html-translator/pkg/translation"
)

// Change is one content change of an edit: Range (byte places, in the
// document the change applies to) is replaced by Text.
type Change struct {
	Range position.Range
	Text  string
}

// Edit is the list of changes delivered by one editor event. Hosts usually
// deliver multi-cursor changes in decreasing line order.
type Edit struct {
	Changes []Change
}

// Update returns the diagnostics of the edited document, given the set
// computed before the edit and the document lines after it.
//
// A nil prev means nothing is known about the document and triggers a full
// scan. Lines before the first changed line keep their diagnostics; the rest
// are recomputed as narrowly as the shape of the edit allows:
//   - one change re-diagnoses the lines it produced and shifts what follows;
//   - two changes that only insert a line break re-diagnose the touched lines
//     and shift what follows by one;
//   - anything else re-diagnoses from the first changed line to the end.
func Update(prev []Diagnostic, edit Edit, lines []string, rec *translation.Record, d placeholder.Delimiters) []Diagnostic {
	if rec == nil || !rec.Valid {
		return nil
	}
	if len(edit.Changes) == 0 {
		return prev
	}
	if prev == nil {
		return DiagnoseDocument(lines, rec, d)
	}

	firstLine := FirstChangedLine(edit)

	carried := 0
	for carried < len(prev) && prev[carried].Line < firstLine {
		carried++
	}

	res := make([]Diagnostic, 0, len(prev))
	res = append(res, prev[:carried]...)
	rest := prev[carried:]

	switch {
	case len(edit.Changes) == 1:
		change := edit.Changes[0]
		inserted := scan.CountNewLines(change.Text)
		removed := change.Range.End.Line - change.Range.Start.Line
		delta := inserted - removed

		res = diagnoseRange(res, lines, firstLine, firstLine+inserted+1, rec, d)

		// everything on the replaced lines is stale
		lastReplaced := max(change.Range.End.Line, firstLine)
		for len(rest) > 0 && rest[0].Line <= lastReplaced {
			rest = rest[1:]
		}
		for _, old := range rest {
			res = append(res, old.shifted(delta))
		}

	case isNewlineInsertion(edit):
		lastTouched := max(edit.Changes[0].Range.Start.Line, edit.Changes[1].Range.Start.Line)

		res = diagnoseRange(res, lines, firstLine, lastTouched+2, rec, d)

		for len(rest) > 0 && rest[0].Line <= lastTouched {
			rest = rest[1:]
		}
		for _, old := range rest {
			res = append(res, old.shifted(1))
		}

	default:
		res = diagnoseRange(res, lines, firstLine, len(lines), rec, d)
	}

	return clampToLines(res, len(lines))
}

// FirstChangedLine is the smallest start line among the changes. With the
// usual decreasing order this is the start line of the last change.
func FirstChangedLine(edit Edit) int {
	if len(edit.Changes) == 0 {
		return 0
	}
	first := edit.Changes[len(edit.Changes)-1].Range.Start.Line
	for _, c := range edit.Changes {
		first = min(first, c.Range.Start.Line)
	}
	return max(first, 0)
}

// ChangesDescending reports whether the changes are ordered by decreasing
// start position.
func ChangesDescending(edit Edit) bool {
	for i := 1; i < len(edit.Changes); i++ {
		if edit.Changes[i-1].Range.Start.Before(edit.Changes[i].Range.Start) {
			return false
		}
	}
	return true
}

// isNewlineInsertion detects the pair of changes editors send when Enter is
// pressed: one change with empty text and one whose text is a line break
// followed only by indentation spaces. Both must stay within a single line.
func isNewlineInsertion(edit Edit) bool {
	if len(edit.Changes) != 2 {
		return false
	}
	a, b := edit.Changes[0], edit.Changes[1]
	for _, c := range edit.Changes {
		if c.Range.Start.Line != c.Range.End.Line {
			return false
		}
	}
	return (a.Text == "" && isBareNewline(b.Text)) || (b.Text == "" && isBareNewline(a.Text))
}

func isBareNewline(text string) bool {
	var tail string
	switch {
	case strings.HasPrefix(text, "\r\n"):
		tail = text[2:]
	case strings.HasPrefix(text, "\n"):
		tail = text[1:]
	default:
		return false
	}
	return scan.FirstNonSpace(tail, 0) == len(tail)
}

// clampToLines drops diagnostics that fall outside a document of n lines.
func clampToLines(diags []Diagnostic, n int) []Diagnostic {
	out := diags[:0]
	for _, d := range diags {
		if d.Line >= 0 && d.Line < n {
			out = append(out, d)
		}
	}
	return out
}
