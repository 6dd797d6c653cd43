package placeholder

import (
	"github.com/walteh/html-translator/pkg/scan"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrInvalidShape = errors.Base("Invalid escape strings: expected array of two non-empty strings, rolling back to default {{ }}")
	ErrInnerChar    = errors.Base("Invalid escape strings: inner-most characters must be different from letters, digits, or . _")
)

// Delimiters is the open/close marker pair bounding a placeholder.
type Delimiters struct {
	Open  string
	Close string
}

// Default returns the {{ }} pair.
func Default() Delimiters {
	return Delimiters{Open: "{{", Close: "}}"}
}

// Validate checks that both markers are non-empty and that the characters
// facing the key (last of Open, first of Close) cannot be read as key characters.
func (d Delimiters) Validate() error {
	if d.Open == "" || d.Close == "" {
		return ErrInvalidShape
	}
	if scan.IsKeyChar(d.Open[len(d.Open)-1]) || scan.IsKeyChar(d.Close[0]) {
		return errors.WithDetails(ErrInnerChar, "open", d.Open, "close", d.Close)
	}
	return nil
}

// Snippet is the insert text offered right after an opening delimiter; the
// tab stop sits where the key goes.
func (d Delimiters) Snippet() string {
	return "${0:textID}" + d.Close
}

// TriggerCharacters are the characters after which a client should ask for
// completions.
func (d Delimiters) TriggerCharacters() []string {
	res := []string{"."}
	if d.Open != "" {
		if last := d.Open[len(d.Open)-1:]; last != "." {
			res = append(res, last)
		}
	}
	return res
}

func (d Delimiters) String() string {
	return d.Open + " " + d.Close
}
