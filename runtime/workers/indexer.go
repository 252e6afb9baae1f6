package workers

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/repositories"
)

// IndexerWorker drains persisted-message events off a buffered channel and
// feeds them to the full-text index. Indexing is best-effort: the channel
// send on the hot path never blocks, so under backpressure an entry is
// dropped rather than stalling a broadcast. The message itself is already
// durable by the time the event exists.
type IndexerWorker struct {
	log    *slog.Logger
	index  repositories.ISearchIndex
	events chan event.DomainEvent
}

func NewIndexerWorker(log *slog.Logger, index repositories.ISearchIndex, buffer int) *IndexerWorker {
	return &IndexerWorker{
		log:    log,
		index:  index,
		events: make(chan event.DomainEvent, buffer),
	}
}

// Sink returns the non-blocking feed to hang off the pipeline's broadcast.
func (w *IndexerWorker) Sink() contract.EventSink {
	return indexFeed{events: w.events, log: w.log}
}

func (w *IndexerWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping indexer")
			return nil
		case evt := <-w.events:
			added, ok := evt.(event.MessageAdded)
			if !ok {
				continue
			}
			if err := w.index.Index(added.Conversation, added.Message); err != nil {
				w.log.Warn("Indexing failed",
					"conversation_id", added.Conversation,
					"message_id", added.Message.ID,
					"error", err)
			}
		}
	}
}

type indexFeed struct {
	events chan event.DomainEvent
	log    *slog.Logger
}

func (f indexFeed) Consume(ctx context.Context, evt event.DomainEvent) error {
	select {
	case f.events <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		f.log.Debug("Index queue full, entry dropped", "conversation_id", evt.ConversationID())
		return nil
	}
}
