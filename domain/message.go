// Package domain contains core concepts of the chat system.
// This file defines Message events and their derived metadata.
// Messages are immutable once appended; the log is append-only.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type Intent string

const (
	IntentGreeting    Intent = "greeting"
	IntentFarewell    Intent = "farewell"
	IntentGratitude   Intent = "gratitude"
	IntentHelpRequest Intent = "help_request"
	IntentQuestion    Intent = "question"
	IntentStatement   Intent = "statement"
	IntentUnknown     Intent = "unknown"
)

// Annotation is the linguistic metadata attached to every persisted Message.
// It is always present after the pipeline completes; fallback values
// substitute on analyzer failure, never absence.
type Annotation struct {
	Sentiment Sentiment `json:"sentiment"`
	Entities  []string  `json:"entities"`
	Intent    Intent    `json:"intent"`
	Lang      string    `json:"lang,omitempty"`
}

// FallbackAnnotation is what a message carries when analysis failed.
func FallbackAnnotation() Annotation {
	return Annotation{Sentiment: SentimentNeutral, Entities: nil, Intent: IntentUnknown}
}

// Message represents an immutable chat event. AI-authored messages keep the
// triggering user as sender and carry IsAI=true.
type Message struct {
	ID         uuid.UUID  `json:"id"`
	SenderID   string     `json:"sender_id"`
	Content    string     `json:"content"`
	IsAI       bool       `json:"is_ai"`
	CreatedAt  time.Time  `json:"created_at"`
	Annotation Annotation `json:"annotation"`
}
