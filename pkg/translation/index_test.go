package translation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/html-translator/pkg/translation"
)

func TestIndexLookups(t *testing.T) {
	idx := translation.NewIndex()

	_, ok := idx.LookupByHTML("/w/index.html")
	require.False(t, ok)

	rec := translation.NewRecord("/w/index.html", "/w/index.json", []string{"b", "a", "a"})
	idx.AddRecord(rec)

	byHTML, ok := idx.LookupByHTML("/w/index.html")
	require.True(t, ok)
	byJSON, ok := idx.LookupByJSON("/w/index.json")
	require.True(t, ok)
	assert.Same(t, byHTML, byJSON)
	assert.True(t, byHTML.Valid)
	assert.Equal(t, []string{"a", "b"}, byHTML.Keys())
	assert.True(t, byHTML.Has("a"))
	assert.False(t, byHTML.Has("c"))
	assert.Equal(t, 1, idx.Len())
}

func TestIndexClearIsIdempotent(t *testing.T) {
	idx := translation.NewIndex()
	idx.Clear()

	idx.AddRecord(translation.NewRecord("/h", "/j", []string{"k"}))
	idx.Clear()
	idx.Clear()

	_, ok := idx.LookupByHTML("/h")
	assert.False(t, ok)
	_, ok = idx.LookupByJSON("/j")
	assert.False(t, ok)
	assert.Empty(t, idx.Records())
}

func TestIndexUpdateAndInvalidate(t *testing.T) {
	idx := translation.NewIndex()
	rec := translation.NewRecord("/h", "/j", []string{"old"})
	idx.AddRecord(rec)

	require.True(t, idx.MarkInvalid("/j"))
	assert.False(t, rec.Valid)
	assert.True(t, rec.Has("old"), "stale keys are kept while invalid")

	require.True(t, idx.UpdateKeys("/j", []string{"new"}))
	assert.True(t, rec.Valid)
	assert.Equal(t, []string{"new"}, rec.Keys())

	assert.False(t, idx.MarkInvalid("/unknown"))
	assert.False(t, idx.UpdateKeys("/unknown", nil))
}

func TestIndexRefresh(t *testing.T) {
	idx := translation.NewIndex()
	rec := translation.NewRecord("/h", "/j", []string{"old"})
	idx.AddRecord(rec)

	got, err := idx.Refresh("/j", []byte(`{"fresh":{"en":"x"}}`), nil)
	require.NoError(t, err)
	assert.Same(t, rec, got)
	assert.Equal(t, []string{"fresh"}, rec.Keys())

	_, err = idx.Refresh("/j", []byte(`{"broken"`), nil)
	require.Error(t, err)
	assert.False(t, rec.Valid)

	got, err = idx.Refresh("/other", []byte(`{}`), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
