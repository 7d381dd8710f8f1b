package shared

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "short", input: "lamp", max: 10, want: "lamp"},
		{name: "exact", input: "lamp", max: 4, want: "lamp"},
		{name: "ascii", input: "lampshade", max: 4, want: "lamp"},
		{name: "multi-byte", input: "ééé", max: 2, want: "éé"},
		{name: "mixed", input: "aéb", max: 2, want: "aé"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRunes(tt.input, tt.max))
		})
	}
}

func TestTruncateRunes_NeverSplitsRune(t *testing.T) {
	got := TruncateRunes("a"+strings.Repeat("é", 600), 500)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 500, RuneLen(got))
}
