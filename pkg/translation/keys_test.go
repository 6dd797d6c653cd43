package translation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/html-translator/pkg/translation"
)

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		markers []string
		want    []string
		wantErr error
	}{
		{
			name: "leaf_by_marker_and_empty_object",
			text: `{"a":{"en":"x","it":"y"},"b":{"c":{}}}`,
			want: []string{"a", "b.c"},
		},
		{
			name: "only_it_marker",
			text: `{"menu":{"home":{"it":"Casa"},"about":{"en":"About"}}}`,
			want: []string{"menu.about", "menu.home"},
		},
		{
			name: "scalars_and_arrays_are_ignored",
			text: `{"title":"plain","list":[{"en":"x"}],"n":null,"ok":{"en":""}}`,
			want: []string{"ok"},
		},
		{
			name: "deep_nesting",
			text: `{"a":{"b":{"c":{"d":{"en":"deep"}}}},"e":{}}`,
			want: []string{"a.b.c.d", "e"},
		},
		{
			name:    "custom_markers",
			text:    `{"a":{"fr":"x"},"b":{"en":"y","c":{}}}`,
			markers: []string{"fr"},
			want:    []string{"a", "b.c"},
		},
		{
			name:    "invalid_json",
			text:    `{"a": `,
			wantErr: nil,
		},
		{
			name:    "not_an_object",
			text:    `["a","b"]`,
			wantErr: translation.ErrNotObject,
		},
		{
			name:    "no_keys",
			text:    `{"a":"x","b":1}`,
			wantErr: translation.ErrNoKeys,
		},
		{
			name:    "empty_root",
			text:    `{}`,
			wantErr: translation.ErrNoKeys,
		},
		{
			name:    "trailing_data",
			text:    `{"a":{}} {"b":{}}`,
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := translation.ParseKeys([]byte(tt.text), tt.markers)
			if tt.want == nil {
				require.Error(t, err)
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
				}
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTreeLeavesMatchesDottedPaths(t *testing.T) {
	tree := translation.Tree{
		"nav": map[string]any{
			"home":    map[string]any{"en": "Home"},
			"contact": map[string]any{},
			"sub": translation.Tree{
				"x": map[string]any{"it": "X"},
			},
		},
		"footer": map[string]any{"en": "f", "extra": map[string]any{}},
	}

	assert.Equal(t, []string{"footer", "nav.contact", "nav.home", "nav.sub.x"}, tree.Leaves(translation.DefaultMarkers))
}
