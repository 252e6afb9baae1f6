// Package ai wraps the external generative-text provider behind a façade
// that never fails: provider errors are absorbed into a fixed fallback reply.
package ai

import (
	"context"
	"log/slog"

	"chat-relay/domain"
)

const (
	// One system instruction for every request, prefixed before history.
	systemInstruction = "You are a helpful assistant in a group chat. " +
		"Answer the last user message, keep replies short and conversational."

	// FallbackReply is returned verbatim on any provider failure. It flows
	// through annotation and persistence like any other message.
	FallbackReply = "Sorry, I could not come up with a reply right now. Please try again in a moment."

	historyWindow       = 10
	maxReplyTokens      = 256
	samplingTemperature = 0.7
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Completion struct {
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// Provider issues one completion request. Implementations own transport
// details; retries belong to the orchestration layer, not here.
type Provider interface {
	Complete(ctx context.Context, completion Completion) (string, error)
}

type ResponseGenerator struct {
	provider Provider
	log      *slog.Logger
}

func NewResponseGenerator(provider Provider, log *slog.Logger) *ResponseGenerator {
	return &ResponseGenerator{provider: provider, log: log}
}

// Generate builds a bounded context from the most recent history entries
// (oldest first) and issues exactly one provider request. It never raises:
// any failure is logged and replaced by the fallback reply, reported through
// the second return so callers never compare reply text against the fallback
// constant.
func (g *ResponseGenerator) Generate(ctx context.Context, userText string,
	history []domain.Message, requestingUserID string) (string, bool) {
	completion := Completion{
		Messages:    buildContext(userText, history),
		MaxTokens:   maxReplyTokens,
		Temperature: samplingTemperature,
	}

	reply, err := g.provider.Complete(ctx, completion)
	if err != nil {
		g.log.Error("Provider call failed, using fallback reply",
			"user_id", requestingUserID,
			"error", err)
		return FallbackReply, true
	}
	return reply, false
}

func buildContext(userText string, history []domain.Message) []ChatMessage {
	messages := []ChatMessage{{Role: "system", Content: systemInstruction}}

	window := history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}
	for _, msg := range window {
		role := "user"
		if msg.IsAI {
			role = "assistant"
		}
		messages = append(messages, ChatMessage{Role: role, Content: msg.Content})
	}

	return append(messages, ChatMessage{Role: "user", Content: userText})
}
