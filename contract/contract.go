//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

// EventSink receives fanned-out domain events. A sink must never block the
// caller beyond its configured delivery budget.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Worker doesn't protect itself. Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IRegistry tracks which live sessions belong to which conversation rooms.
// Membership is ephemeral and rebuilt from join events, never persisted.
type IRegistry interface {
	Subscribe(sessionID string, roomID domain.ConversationID, sink EventSink)
	Unsubscribe(sessionID string, roomID domain.ConversationID)
	Disconnect(sessionID string)
	IsMember(sessionID string, roomID domain.ConversationID) bool
	SinksForRoom(roomID domain.ConversationID, exclude ...string) []EventSink
}

// IConversationStore is the durable collaborator behind the pipeline.
// AppendMessage must be atomic; the pipeline adds its own per-conversation
// serialization on top so two appends never race on the same prior state.
type IConversationStore interface {
	Load(ctx context.Context, id domain.ConversationID) (domain.Conversation, error)
	AppendMessage(ctx context.Context, id domain.ConversationID, msg domain.Message) (domain.Conversation, error)
	Remove(ctx context.Context, id domain.ConversationID) error
}

// IAnnotator is total and deterministic; it never fails.
type IAnnotator interface {
	Annotate(text string) domain.Annotation
}

// IResponder produces the automated reply text. It absorbs provider errors
// and always returns usable text; fellBack reports whether the text is the
// substitute for a failed provider call rather than a real reply.
type IResponder interface {
	Generate(ctx context.Context, userText string, history []domain.Message, requestingUserID string) (reply string, fellBack bool)
}
