package diagnostic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/html-translator/pkg/diagnostic"
)

func TestCollection(t *testing.T) {
	c := diagnostic.NewCollection()

	_, ok := c.Get("b.html")
	assert.False(t, ok)

	c.Set("b.html", nil)
	got, ok := c.Get("b.html")
	assert.True(t, ok, "an empty set is still a known set")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	c.Set("a.html", []diagnostic.Diagnostic{empty(0, 2)})
	assert.Equal(t, []string{"a.html", "b.html"}, c.IDs())

	c.Delete("a.html")
	assert.Equal(t, []string{"b.html"}, c.IDs())

	c.Clear()
	assert.Empty(t, c.IDs())
	c.Clear()
}

func TestClosest(t *testing.T) {
	keys := []string{"nav.home", "title", "user.email", "user.name"}

	tests := []struct {
		name string
		key  string
		n    int
		want []string
	}{
		{"missing_letter", "user.nme", 3, []string{"user.name"}},
		{"swapped_letters", "titel", 3, []string{"title"}},
		{"prefix_of_several", "user", 3, []string{"user.name", "user.email"}},
		{"limited", "user", 1, []string{"user.name"}},
		{"nothing_close", "zzzzzzzz", 3, []string{}},
		{"exact_key_is_not_a_fix", "title", 3, []string{}},
		{"empty_key", "", 3, nil},
		{"zero_limit", "titel", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diagnostic.Closest(tt.key, keys, tt.n))
		})
	}
}
