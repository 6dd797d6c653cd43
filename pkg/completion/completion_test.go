package completion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/html-translator/pkg/completion"
	"github.com/walteh/html-translator/pkg/placeholder"
	"github.com/walteh/html-translator/pkg/translation"
)

func testRecord() *translation.Record {
	return translation.NewRecord("/w/index.html", "/w/index.json", []string{
		"title",
		"user.email",
		"user.name",
		"usage",
	})
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		col        int
		delim      placeholder.Delimiters
		wantLabels []string
		wantKeys   []string
	}{
		{
			name:       "dotted_prefix_shows_suffixes",
			line:       "<p>{{ user. }}</p>",
			col:        11,
			delim:      placeholder.Default(),
			wantLabels: []string{"email", "name"},
			wantKeys:   []string{"user.email", "user.name"},
		},
		{
			name:       "partial_segment",
			line:       "{{ user.n }}",
			col:        9,
			delim:      placeholder.Default(),
			wantLabels: []string{"name"},
			wantKeys:   []string{"user.name"},
		},
		{
			name:       "undotted_prefix_shows_full_keys",
			line:       "{{us}}",
			col:        4,
			delim:      placeholder.Default(),
			wantLabels: []string{"usage", "user.email", "user.name"},
			wantKeys:   []string{"usage", "user.email", "user.name"},
		},
		{
			name:       "empty_prefix_offers_every_key",
			line:       "{{  }}",
			col:        3,
			delim:      placeholder.Default(),
			wantLabels: []string{"title", "usage", "user.email", "user.name"},
			wantKeys:   []string{"title", "usage", "user.email", "user.name"},
		},
		{
			name:       "custom_delimiters",
			line:       "[[ tit ]]",
			col:        6,
			delim:      placeholder.Delimiters{Open: "[[", Close: "]]"},
			wantLabels: []string{"title"},
			wantKeys:   []string{"title"},
		},
		{
			name:  "no_match",
			line:  "{{ zzz }}",
			col:   6,
			delim: placeholder.Default(),
		},
		{
			name:  "no_opening_delimiter",
			line:  "user. }}",
			col:   5,
			delim: placeholder.Default(),
		},
		{
			name:  "plain_text",
			line:  "<p>hello</p>",
			col:   5,
			delim: placeholder.Default(),
		},
		{
			name:  "column_out_of_range",
			line:  "{{ a }}",
			col:   42,
			delim: placeholder.Default(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := completion.Suggest(testRecord(), tt.line, tt.col, tt.delim)
			if tt.wantLabels == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLabels, got.Labels())
			assert.Equal(t, tt.wantKeys, got.Keys())
		})
	}
}

func TestSuggestLabelsAreKeySuffixes(t *testing.T) {
	line := "{{ user.e }}"
	got := completion.Suggest(testRecord(), line, 9, placeholder.Default())
	require.NotNil(t, got)

	for _, it := range got.Items {
		assert.True(t, len(it.Key) >= len(it.Label))
		assert.Equal(t, it.Label, it.Key[len(it.Key)-len(it.Label):], "label must be a suffix of the key")
		assert.Equal(t, 3, it.ReplaceStart)
		assert.Equal(t, 9, it.ReplaceStop)
		assert.Equal(t, "user.e", line[it.ReplaceStart:it.ReplaceStop])
	}
}

func TestSuggestSnippet(t *testing.T) {
	got := completion.Suggest(testRecord(), "<h1>{{", 6, placeholder.Default())
	require.NotNil(t, got)
	require.Len(t, got.Items, 1)

	it := got.Items[0]
	assert.Equal(t, completion.KindSnippet, it.Kind)
	assert.Equal(t, completion.SnippetLabel, it.Label)
	assert.Equal(t, "${0:textID}}}", it.InsertText)
	assert.Equal(t, 6, it.ReplaceStart)
	assert.Equal(t, 6, it.ReplaceStop)
	assert.Empty(t, got.Keys())
}

func TestSuggestWithoutValidRecord(t *testing.T) {
	assert.Nil(t, completion.Suggest(nil, "{{ a }}", 4, placeholder.Default()))

	rec := testRecord()
	rec.Valid = false
	assert.Nil(t, completion.Suggest(rec, "{{ user. }}", 8, placeholder.Default()))
}
