package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Recife", "%Recife%"},
		{"percent", "100%", `%100\%%`},
		{"underscore", "a_b", `%a\_b%`},
		{"backslash", `c:\temp`, `%c:\\temp%`},
		{"empty", "", "%%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.in))
		})
	}
}
