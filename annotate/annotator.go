// Package annotate derives linguistic metadata from message text.
// The annotator is stateless, deterministic, and performs no I/O.
package annotate

import (
	"log/slog"
	"regexp"
	"strings"

	"chat-relay/domain"

	"github.com/abadojack/whatlanggo"
)

// Strict inequality: a score of exactly +-0.2 stays neutral.
const sentimentThreshold = 0.2

var (
	wordPattern  = regexp.MustCompile(`[A-Za-z0-9']+`)
	datePattern  = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	urlPattern   = regexp.MustCompile(`https?://[^\s]+`)
)

// Intent rules in strict priority order; the first match wins, no
// combination logic. Keyword matching is a case-insensitive substring test.
var intentRules = []struct {
	intent   domain.Intent
	keywords []string
}{
	{domain.IntentGreeting, []string{"hello", "hi", "hey"}},
	{domain.IntentFarewell, []string{"bye", "goodbye"}},
	{domain.IntentGratitude, []string{"thank"}},
	{domain.IntentHelpRequest, []string{"help", "assist", "support"}},
}

type Annotator struct {
	log *slog.Logger
}

func NewAnnotator(log *slog.Logger) *Annotator {
	return &Annotator{log: log}
}

// Annotate is total: any internal failure is caught and mapped to the
// fallback annotation {neutral, [], unknown}.
func (a *Annotator) Annotate(text string) (annotation domain.Annotation) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn("Annotation panicked, falling back", "cause", r)
			annotation = domain.FallbackAnnotation()
		}
	}()

	annotation = domain.Annotation{
		Sentiment: sentimentOf(text),
		Entities:  entitiesOf(text),
		Intent:    intentOf(text),
		Lang:      whatlanggo.Detect(text).Lang.Iso6391(),
	}
	return annotation
}

func sentimentOf(text string) domain.Sentiment {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return domain.SentimentNeutral
	}

	var sum float64
	for _, token := range tokens {
		sum += lexicon[token]
	}
	score := sum / float64(len(tokens))

	switch {
	case score > sentimentThreshold:
		return domain.SentimentPositive
	case score < -sentimentThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// entitiesOf concatenates matches in fixed pattern order: dates, then
// emails, then URLs. Empty matches contribute nothing.
func entitiesOf(text string) []string {
	var entities []string
	for _, pattern := range []*regexp.Regexp{datePattern, emailPattern, urlPattern} {
		entities = append(entities, pattern.FindAllString(text, -1)...)
	}
	return entities
}

func intentOf(text string) domain.Intent {
	lowered := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.intent
			}
		}
	}
	if strings.Contains(lowered, "?") {
		return domain.IntentQuestion
	}
	return domain.IntentStatement
}
