package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	errs "chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/observability"

	"github.com/google/uuid"
)

// Pipeline orchestrates one inbound send: authorize, annotate, append,
// broadcast, generate the reply, annotate it, append, broadcast.
//
// The whole run for a given conversation executes under that conversation's
// gate. Loading a document, appending to its message log in memory, and
// saving it back is inherently racy under concurrent senders; the gate makes
// the log single-writer so two appends can never both win against the same
// prior state, and it keeps every AI reply adjacent to the user message that
// triggered it. Sends to different conversations proceed in parallel.
type Pipeline struct {
	log            *slog.Logger
	store          contract.IConversationStore
	annotator      contract.IAnnotator
	responder      contract.IResponder
	filter         *moderation.Filter
	registry       contract.IRegistry
	permanentSinks []contract.EventSink
	stats          *observability.PipelineStats
	sinkTimeout    time.Duration
	gates          sync.Map // conversation id -> *sync.Mutex
}

func NewPipeline(
	log *slog.Logger,
	store contract.IConversationStore,
	annotator contract.IAnnotator,
	responder contract.IResponder,
	filter *moderation.Filter,
	registry contract.IRegistry,
	stats *observability.PipelineStats,
	sinkTimeout time.Duration,
) *Pipeline {
	return &Pipeline{
		log:         log,
		store:       store,
		annotator:   annotator,
		responder:   responder,
		filter:      filter,
		registry:    registry,
		stats:       stats,
		sinkTimeout: sinkTimeout,
	}
}

// AddSinks registers sinks that receive every broadcast event on top of the
// room members (indexing, projections). Call before the first send.
func (p *Pipeline) AddSinks(sinks ...contract.EventSink) {
	p.permanentSinks = append(p.permanentSinks, sinks...)
}

// Send runs the state machine for one inbound message. The returned error
// is for the originating session only; nothing is broadcast on denial or
// failure of the first append. A storage failure on the reply append leaves
// the already-persisted user message in place: partial completion is
// accepted, the user message is always valid to keep.
//
// Once past authorization the run goes to a terminal state even if the
// initiating session disconnects; callers must pass a server-lifetime
// context, not a connection-scoped one.
func (p *Pipeline) Send(ctx context.Context, user domain.User, sessionID string,
	conversationID domain.ConversationID, content string) error {
	if strings.TrimSpace(content) == "" {
		return errs.ErrEmptyContent
	}

	gate := p.gateFor(conversationID)
	gate.Lock()
	defer gate.Unlock()

	// Received -> Authorized
	conversation, err := p.store.Load(ctx, conversationID)
	if err != nil {
		p.stats.IncrSendsFailed()
		return err
	}
	if !domain.CanSend(user, conversation) {
		p.stats.IncrSendsDenied()
		p.log.Warn("Send denied",
			"user_id", user.ID,
			"conversation_id", conversationID)
		return errs.ErrForbidden
	}
	p.stats.IncrSendsAccepted()

	// Authorized -> UserAnnotated: moderation first so the annotation
	// describes what actually gets persisted.
	censored, _ := p.filter.Censor(content)
	userMsg := domain.Message{
		ID:         uuid.New(),
		SenderID:   user.ID,
		Content:    censored,
		CreatedAt:  time.Now().UTC(),
		Annotation: p.annotator.Annotate(censored),
	}

	// UserAnnotated -> UserPersisted
	updated, err := p.store.AppendMessage(ctx, conversationID, userMsg)
	if err != nil {
		p.stats.IncrSendsFailed()
		return fmt.Errorf("persist user message: %w", err)
	}
	p.stats.IncrPersisted()

	// UserPersisted -> UserBroadcast: every room member, the sender's other
	// sessions included.
	p.broadcast(ctx, event.MessageAdded{Conversation: conversationID, Message: userMsg})

	// UserBroadcast -> ReplyRequested -> ReplyAnnotated: the responder never
	// fails; provider errors surface as the fixed fallback text.
	replyText, fellBack := p.responder.Generate(ctx, censored, updated.Messages, user.ID)
	if fellBack {
		p.stats.IncrProviderFallback()
	}
	aiMsg := domain.Message{
		ID:         uuid.New(),
		SenderID:   user.ID,
		Content:    replyText,
		IsAI:       true,
		CreatedAt:  time.Now().UTC(),
		Annotation: p.annotator.Annotate(replyText),
	}

	// ReplyAnnotated -> ReplyPersisted
	if _, err = p.store.AppendMessage(ctx, conversationID, aiMsg); err != nil {
		p.stats.IncrSendsFailed()
		return fmt.Errorf("persist reply: %w", err)
	}
	p.stats.IncrPersisted()

	// ReplyPersisted -> ReplyBroadcast -> Done
	p.broadcast(ctx, event.MessageAdded{Conversation: conversationID, Message: aiMsg})
	return nil
}

// broadcast fans an event out to the room's sinks plus the permanent ones.
// Delivery order across recipients is unspecified; per-conversation emission
// order is guaranteed because broadcast only runs under the conversation
// gate. A slow sink only burns its own delivery budget.
func (p *Pipeline) broadcast(ctx context.Context, evt event.DomainEvent) {
	sinks := p.registry.SinksForRoom(evt.ConversationID())
	sinks = append(sinks, p.permanentSinks...)

	for _, sink := range sinks {
		deliveryCtx, cancel := context.WithTimeout(ctx, p.sinkTimeout)
		if err := sink.Consume(deliveryCtx, evt); err != nil {
			p.log.Warn("Sink delivery failed",
				"conversation_id", evt.ConversationID(),
				"error", err)
		}
		cancel()
	}
	p.stats.IncrBroadcasts()
}

func (p *Pipeline) gateFor(conversationID domain.ConversationID) *sync.Mutex {
	gate, _ := p.gates.LoadOrStore(conversationID, &sync.Mutex{})
	return gate.(*sync.Mutex)
}

// DropGate discards the serialization state of a conversation that no longer
// exists, so the gate map does not grow by one mutex per conversation ever
// sent to. A send racing the drop simply allocates a fresh gate and then
// fails its Load on the removed conversation.
func (p *Pipeline) DropGate(conversationID domain.ConversationID) {
	p.gates.Delete(conversationID)
}
