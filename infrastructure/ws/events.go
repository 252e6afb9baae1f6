package ws

import (
	"encoding/json"
	"time"

	"chat-relay/domain"
)

// Wire protocol: every frame is one JSON object {"event": ..., "data": ...}.
// Inbound and outbound frames share the envelope; payloads differ per event.
const (
	// Inbound
	EventJoinChat    = "join_chat"
	EventLeaveChat   = "leave_chat"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventStopTyping  = "stop_typing"

	// Outbound
	EventNewMessage     = "new_message"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
	EventError          = "error"
)

type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewFrame(event string, data any) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: event, Data: raw}, nil
}

type JoinPayload struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

type LeavePayload struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

type SendPayload struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	Content        string `json:"content" validate:"required"`
}

type TypingPayload struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

type MessagePayload struct {
	ID             string            `json:"id"`
	ConversationID string            `json:"conversation_id"`
	SenderID       string            `json:"sender_id"`
	Content        string            `json:"content"`
	IsAI           bool              `json:"is_ai"`
	CreatedAt      time.Time         `json:"created_at"`
	Annotation     domain.Annotation `json:"annotation"`
}

type PresencePayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toMessagePayload(conversationID domain.ConversationID, msg domain.Message) MessagePayload {
	return MessagePayload{
		ID:             msg.ID.String(),
		ConversationID: conversationID.String(),
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		IsAI:           msg.IsAI,
		CreatedAt:      msg.CreatedAt,
		Annotation:     msg.Annotation,
	}
}
