package annotate

import (
	"log/slog"
	"testing"

	"chat-relay/domain"

	"github.com/stretchr/testify/require"
)

func TestAnnotator_Sentiment_Boundaries(t *testing.T) {
	req := require.New(t)
	annotator := NewAnnotator(slog.Default())

	tests := []struct {
		name     string
		input    string
		expected domain.Sentiment
	}{
		{
			// "good" weighs 1 over 5 tokens: score is exactly 0.2
			name:     "Exact positive boundary stays neutral",
			input:    "good day for a walk",
			expected: domain.SentimentNeutral,
		},
		{
			// "bad" weighs -1 over 5 tokens: score is exactly -0.2
			name:     "Exact negative boundary stays neutral",
			input:    "bad day for a walk",
			expected: domain.SentimentNeutral,
		},
		{
			name:     "Clearly positive",
			input:    "I love this awesome chat",
			expected: domain.SentimentPositive,
		},
		{
			name:     "Clearly negative",
			input:    "this is terrible and broken",
			expected: domain.SentimentNegative,
		},
		{
			name:     "No lexicon words",
			input:    "the train leaves at noon",
			expected: domain.SentimentNeutral,
		},
		{
			name:     "Empty text",
			input:    "",
			expected: domain.SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Equal(tt.expected, annotator.Annotate(tt.input).Sentiment)
		})
	}
}

func TestAnnotator_Entities_Order(t *testing.T) {
	req := require.New(t)
	annotator := NewAnnotator(slog.Default())

	// Dates first, then emails, then URLs, regardless of text position
	annotation := annotator.Annotate("meet me 01/02/2023 at foo@bar.com see https://x.com")
	req.Equal([]string{"01/02/2023", "foo@bar.com", "https://x.com"}, annotation.Entities)

	annotation = annotator.Annotate("https://x.com then foo@bar.com then 01/02/2023")
	req.Equal([]string{"01/02/2023", "foo@bar.com", "https://x.com"}, annotation.Entities)

	req.Empty(annotator.Annotate("nothing to extract here").Entities)
}

func TestAnnotator_Intent_Priority(t *testing.T) {
	req := require.New(t)
	annotator := NewAnnotator(slog.Default())

	tests := []struct {
		name     string
		input    string
		expected domain.Intent
	}{
		{
			// Greeting outranks the question mark
			name:     "Greeting beats question",
			input:    "hi, how are you?",
			expected: domain.IntentGreeting,
		},
		{
			name:     "Farewell",
			input:    "goodbye everyone",
			expected: domain.IntentFarewell,
		},
		{
			name:     "Gratitude via substring",
			input:    "many thanks for that",
			expected: domain.IntentGratitude,
		},
		{
			name:     "Greeting beats gratitude",
			input:    "hello and thank you",
			expected: domain.IntentGreeting,
		},
		{
			name:     "Question mark alone",
			input:    "is it raining today?",
			expected: domain.IntentQuestion,
		},
		{
			name:     "Plain statement",
			input:    "it rained all day",
			expected: domain.IntentStatement,
		},
		{
			name:     "Case insensitive",
			input:    "SUPPORT needed at once",
			expected: domain.IntentHelpRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Equal(tt.expected, annotator.Annotate(tt.input).Intent)
		})
	}
}

func TestAnnotator_Fallback_Values(t *testing.T) {
	req := require.New(t)

	fallback := domain.FallbackAnnotation()
	req.Equal(domain.SentimentNeutral, fallback.Sentiment)
	req.Empty(fallback.Entities)
	req.Equal(domain.IntentUnknown, fallback.Intent)
}
