package event

import (
	"chat-relay/domain"
)

// DomainEvent is anything fanned out to the members of a conversation room.
type DomainEvent interface {
	ConversationID() domain.ConversationID
}

// MessageAdded is emitted once per persisted message, user and AI alike,
// in persistence order.
type MessageAdded struct {
	Conversation domain.ConversationID
	Message      domain.Message
}

func (m MessageAdded) ConversationID() domain.ConversationID {
	return m.Conversation
}

// TypingStarted / TypingStopped are the ephemeral presence relays. They are
// never persisted; consumers rebuild typing state from the stream alone.
type TypingStarted struct {
	Conversation domain.ConversationID
	UserID       string
}

func (t TypingStarted) ConversationID() domain.ConversationID {
	return t.Conversation
}

type TypingStopped struct {
	Conversation domain.ConversationID
	UserID       string
}

func (t TypingStopped) ConversationID() domain.ConversationID {
	return t.Conversation
}
