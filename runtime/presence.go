package runtime

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
)

// PresenceTracker relays typing signals to the other members of a room.
// Nothing is persisted and no authorization is re-checked beyond existing
// room membership: join already gated it. A disconnect emits no synthetic
// stop-typing event; consumers infer it from the stream.
type PresenceTracker struct {
	log         *slog.Logger
	registry    contract.IRegistry
	stats       *observability.PipelineStats
	sinkTimeout time.Duration
}

func NewPresenceTracker(log *slog.Logger, registry contract.IRegistry,
	stats *observability.PipelineStats, sinkTimeout time.Duration) *PresenceTracker {
	return &PresenceTracker{log: log, registry: registry, stats: stats, sinkTimeout: sinkTimeout}
}

func (t *PresenceTracker) Typing(ctx context.Context, sessionID, userID string, conversationID domain.ConversationID) {
	t.relay(ctx, sessionID, conversationID,
		event.TypingStarted{Conversation: conversationID, UserID: userID})
}

func (t *PresenceTracker) StopTyping(ctx context.Context, sessionID, userID string, conversationID domain.ConversationID) {
	t.relay(ctx, sessionID, conversationID,
		event.TypingStopped{Conversation: conversationID, UserID: userID})
}

// relay delivers to every room member except the originating session.
func (t *PresenceTracker) relay(ctx context.Context, sessionID string,
	conversationID domain.ConversationID, evt event.DomainEvent) {
	if !t.registry.IsMember(sessionID, conversationID) {
		return
	}

	for _, sink := range t.registry.SinksForRoom(conversationID, sessionID) {
		deliveryCtx, cancel := context.WithTimeout(ctx, t.sinkTimeout)
		if err := sink.Consume(deliveryCtx, evt); err != nil {
			t.log.Debug("Typing relay dropped",
				"conversation_id", conversationID,
				"error", err)
		}
		cancel()
	}
	t.stats.IncrTypingRelays()
}
