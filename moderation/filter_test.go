package moderation

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilter_Censor(t *testing.T) {
	req := require.New(t)
	filter, err := NewFilter([]string{"badger", "snake"}, '*', slog.Default())
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		found    []string
	}{
		{
			name:     "Single word masked, spacing kept",
			input:    "the badger is here",
			expected: "the ****** is here",
			found:    []string{"badger"},
		},
		{
			name:     "Uppercase and split by punctuation",
			input:    "watch the B.A.D.G.E.R run",
			expected: "watch the *********** run",
			found:    []string{"badger"},
		},
		{
			name:     "Two different words",
			input:    "snake meets badger",
			expected: "***** meets ******",
			found:    []string{"snake", "badger"},
		},
		{
			name:     "Nothing to mask",
			input:    "a quiet afternoon",
			expected: "a quiet afternoon",
			found:    nil,
		},
		{
			name:     "Empty input",
			input:    "",
			expected: "",
			found:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			censored, found := filter.Censor(tt.input)
			req.Equal(tt.expected, censored)
			req.ElementsMatch(tt.found, found)
		})
	}
}

func TestFilter_EmptyWordList_PassesThrough(t *testing.T) {
	req := require.New(t)
	filter, err := NewFilter(nil, '*', slog.Default())
	req.NoError(err)

	censored, found := filter.Censor("badger snake mushroom")
	req.Equal("badger snake mushroom", censored)
	req.Empty(found)
}
