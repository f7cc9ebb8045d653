package teams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAliases(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Boston Celtics", "BOS"},
		{"  boston   celtics  ", "BOS"},
		{"CELTICS", "BOS"},
		{"Los Angeles Lakers", "LAL"},
		{"trail blazers", "POR"},
		{"76ers", "PHI"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestNormalizeStripsDiacritics(t *testing.T) {
	assert.Equal(t, "DEN", Normalize("Denver Núggets"))
	assert.Equal(t, "jokic", Normalize("Jokić"))
}

func TestNormalizeUnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "springfield atoms", Normalize("  Springfield   Atoms "))
	assert.Equal(t, "", Normalize(""))
	// Canonical ids round-trip regardless of case.
	assert.Equal(t, "BOS", Normalize("BOS"))
	assert.Equal(t, "GSW", Normalize("gsw"))
}
