package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testSession() *Session {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSession(log, nil, domain.User{ID: "alice"}, 4)
}

func TestSession_Consume_MessageAdded(t *testing.T) {
	req := require.New(t)
	session := testSession()

	msg := domain.Message{
		ID:        uuid.New(),
		SenderID:  "alice",
		Content:   "hello",
		IsAI:      false,
		CreatedAt: time.Now().UTC(),
		Annotation: domain.Annotation{
			Sentiment: domain.SentimentNeutral,
			Intent:    domain.IntentGreeting,
		},
	}
	err := session.Consume(context.Background(),
		event.MessageAdded{Conversation: "conv-1", Message: msg})
	req.NoError(err)

	frame := <-session.send
	req.Equal(EventNewMessage, frame.Event)

	var payload MessagePayload
	req.NoError(json.Unmarshal(frame.Data, &payload))
	req.Equal(msg.ID.String(), payload.ID)
	req.Equal("conv-1", payload.ConversationID)
	req.Equal("hello", payload.Content)
	req.Equal(domain.IntentGreeting, payload.Annotation.Intent)
}

func TestSession_Consume_Presence(t *testing.T) {
	req := require.New(t)
	session := testSession()

	err := session.Consume(context.Background(),
		event.TypingStarted{Conversation: "conv-1", UserID: "bob"})
	req.NoError(err)
	frame := <-session.send
	req.Equal(EventUserTyping, frame.Event)

	err = session.Consume(context.Background(),
		event.TypingStopped{Conversation: "conv-1", UserID: "bob"})
	req.NoError(err)
	frame = <-session.send
	req.Equal(EventUserStopTyping, frame.Event)
}

func TestSession_Consume_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := NewSession(log, nil, domain.User{ID: "alice"}, 1)

	evt := event.TypingStarted{Conversation: "conv-1", UserID: "bob"}
	req.NoError(session.Consume(context.Background(), evt))
	// Buffer full: the frame is dropped, the caller never blocks.
	req.NoError(session.Consume(context.Background(), evt))
	req.Len(session.send, 1)
}
