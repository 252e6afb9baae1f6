package runtime

import (
	"context"
	"testing"

	"chat-relay/domain"
	"chat-relay/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type nopSink struct{ id int }

func (s nopSink) Consume(_ context.Context, _ event.DomainEvent) error {
	return nil
}

func TestRegistry_Subscribe_One_Room_One_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sessionID := uuid.NewString()
	roomID := domain.ConversationID("conv-1")
	sink := nopSink{id: 1}

	// Given no session is connected
	req.Nil(registry.SinksForRoom(roomID))
	req.False(registry.IsMember(sessionID, roomID))

	// When a session joins a room
	registry.Subscribe(sessionID, roomID, sink)

	// Then
	req.True(registry.IsMember(sessionID, roomID))
	req.Len(registry.SinksForRoom(roomID), 1)
	req.Contains(registry.SinksForRoom(roomID), sink)
}

func TestRegistry_Subscribe_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sessionID := uuid.NewString()
	roomID := domain.ConversationID("conv-1")

	registry.Subscribe(sessionID, roomID, nopSink{id: 1})
	registry.Subscribe(sessionID, roomID, nopSink{id: 1})

	req.Len(registry.SinksForRoom(roomID), 1)
}

func TestRegistry_Unsubscribe_Always_Succeeds(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sessionID := uuid.NewString()
	roomID := domain.ConversationID("conv-1")

	// Leaving a room that was never joined is a no-op
	registry.Unsubscribe(sessionID, roomID)
	req.False(registry.IsMember(sessionID, roomID))

	registry.Subscribe(sessionID, roomID, nopSink{id: 1})
	registry.Unsubscribe(sessionID, roomID)

	req.False(registry.IsMember(sessionID, roomID))
	req.Nil(registry.SinksForRoom(roomID))
}

func TestRegistry_Unsubscribe_Keeps_Other_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomID := domain.ConversationID("conv-1")
	session1 := uuid.NewString()
	session2 := uuid.NewString()
	sink2 := nopSink{id: 2}

	registry.Subscribe(session1, roomID, nopSink{id: 1})
	registry.Subscribe(session2, roomID, sink2)

	registry.Unsubscribe(session1, roomID)

	req.Len(registry.SinksForRoom(roomID), 1)
	req.Contains(registry.SinksForRoom(roomID), sink2)
}

func TestRegistry_Disconnect_Removes_From_All_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sessionID := uuid.NewString()
	roomA := domain.ConversationID("conv-a")
	roomB := domain.ConversationID("conv-b")
	sink := nopSink{id: 1}

	registry.Subscribe(sessionID, roomA, sink)
	registry.Subscribe(sessionID, roomB, sink)

	registry.Disconnect(sessionID)

	req.False(registry.IsMember(sessionID, roomA))
	req.False(registry.IsMember(sessionID, roomB))
	req.Nil(registry.SinksForRoom(roomA))
	req.Nil(registry.SinksForRoom(roomB))
}

func TestRegistry_SinksForRoom_Exclusion(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomID := domain.ConversationID("conv-1")
	origin := uuid.NewString()
	other := uuid.NewString()
	otherSink := nopSink{id: 2}

	registry.Subscribe(origin, roomID, nopSink{id: 1})
	registry.Subscribe(other, roomID, otherSink)

	sinks := registry.SinksForRoom(roomID, origin)
	req.Len(sinks, 1)
	req.Contains(sinks, otherSink)
}
