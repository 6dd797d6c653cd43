package diagnostic_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/html-translator/pkg/diagnostic"
	"github.com/walteh/html-translator/pkg/placeholder"
	"github.com/walteh/html-translator/pkg/position"
	"github.com/walteh/html-translator/pkg/translation"
)

const testDocument = "<h1>{{ title }}</h1>\n" +
	"<p>{{ user.nam }} {{}}</p>\n" +
	"<a>{{ nav.home }}</a>\n" +
	"<b>{{ missing }}</b>"

func testRecord() *translation.Record {
	return translation.NewRecord("/w/index.html", "/w/index.json", []string{
		"nav.home",
		"title",
		"user.email",
		"user.name",
	})
}

func nonExistent(line, start, stop int, key string) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Line:     line,
		Start:    start,
		Stop:     stop,
		Message:  `"` + key + `" is not a valid translated text`,
		Severity: diagnostic.SeverityWarning,
		Kind:     diagnostic.KindNonExistent,
		Key:      key,
	}
}

func empty(line, col int) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Line:     line,
		Start:    col,
		Stop:     col,
		Message:  "No translated text specified",
		Severity: diagnostic.SeverityWarning,
		Kind:     diagnostic.KindEmpty,
	}
}

func TestDiagnoseLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		delim placeholder.Delimiters
		want  []diagnostic.Diagnostic
	}{
		{
			name:  "known_key",
			line:  "<h1>{{ title }}</h1>",
			delim: placeholder.Default(),
			want:  nil,
		},
		{
			name:  "unknown_key_spans_inner_text",
			line:  "Hi {{ name }}!",
			delim: placeholder.Default(),
			want:  []diagnostic.Diagnostic{nonExistent(4, 6, 10, "name")},
		},
		{
			name:  "empty_is_zero_width",
			line:  "{{   }}",
			delim: placeholder.Default(),
			want:  []diagnostic.Diagnostic{empty(4, 5)},
		},
		{
			name:  "mixed",
			line:  "{{ title }}{{ nope }}{{}}",
			delim: placeholder.Default(),
			want: []diagnostic.Diagnostic{
				nonExistent(4, 14, 18, "nope"),
				empty(4, 23),
			},
		},
		{
			name:  "unclosed_is_ignored",
			line:  "{{ nope",
			delim: placeholder.Default(),
			want:  nil,
		},
		{
			name:  "custom_delimiters",
			line:  "[[ nope ]] {{ nope }}",
			delim: placeholder.Delimiters{Open: "[[", Close: "]]"},
			want:  []diagnostic.Diagnostic{nonExistent(4, 3, 7, "nope")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diagnostic.DiagnoseLine(nil, tt.line, 4, testRecord(), tt.delim)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiagnoseDocument(t *testing.T) {
	lines := position.Lines(testDocument)
	got := diagnostic.DiagnoseDocument(lines, testRecord(), placeholder.Default())

	want := []diagnostic.Diagnostic{
		nonExistent(1, 6, 14, "user.nam"),
		empty(1, 20),
		nonExistent(3, 6, 13, "missing"),
	}
	assert.Equal(t, want, got)
}

func TestDiagnoseDocumentIsIdempotent(t *testing.T) {
	lines := position.Lines(testDocument)
	rec := testRecord()

	first := diagnostic.DiagnoseDocument(lines, rec, placeholder.Default())
	second := diagnostic.DiagnoseDocument(lines, rec, placeholder.Default())
	assert.Equal(t, first, second)
}

func TestDiagnoseDocumentClean(t *testing.T) {
	got := diagnostic.DiagnoseDocument([]string{"<p>{{ title }}</p>"}, testRecord(), placeholder.Default())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestInvalidRecordYieldsNothing(t *testing.T) {
	rec := testRecord()
	rec.Valid = false
	lines := position.Lines(testDocument)

	assert.Nil(t, diagnostic.DiagnoseDocument(lines, rec, placeholder.Default()))
	assert.Nil(t, diagnostic.DiagnoseDocument(lines, nil, placeholder.Default()))

	edit := diagnostic.Edit{Changes: []diagnostic.Change{{Text: "x"}}}
	prev := []diagnostic.Diagnostic{empty(0, 0)}
	assert.Nil(t, diagnostic.Update(prev, edit, lines, rec, placeholder.Default()))
}

func TestDiagnosticString(t *testing.T) {
	d := nonExistent(1, 6, 14, "user.nam")
	assert.True(t, strings.HasPrefix(d.String(), "1:6-14 warning: "))
	assert.Equal(t, "nonexistent", d.Kind.String())
	assert.Equal(t, "empty", diagnostic.KindEmpty.String())
}
