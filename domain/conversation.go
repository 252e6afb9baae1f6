package domain

import (
	"time"

	"github.com/samber/lo"
)

type ConversationID string

func (c ConversationID) String() string { return string(c) }

// Conversation is the ordered, append-only log of Messages plus its
// participant set. Mutation goes exclusively through the store's append
// operation; positions are permanent.
type Conversation struct {
	ID           ConversationID `json:"id"`
	Title        string         `json:"title"`
	Participants []string       `json:"participants"`
	Messages     []Message      `json:"messages"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (c Conversation) HasParticipant(userID string) bool {
	return lo.Contains(c.Participants, userID)
}
