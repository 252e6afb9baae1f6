//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"chat-relay/domain"
	errs "chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IConversationRepository interface {
	Create(ctx context.Context, title string, participants []string) (domain.Conversation, error)
	Load(ctx context.Context, id domain.ConversationID) (domain.Conversation, error)
	AppendMessage(ctx context.Context, id domain.ConversationID, msg domain.Message) (domain.Conversation, error)
	Remove(ctx context.Context, id domain.ConversationID) error
	ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error)
	Messages(ctx context.Context, id domain.ConversationID, cursor *string) ([]domain.Message, *string, error)
}

// conversationRecord is the stored header of a conversation. Messages live
// under their own keys so appends never rewrite the whole log.
type conversationRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	NextSeq      uint64    `json:"next_seq"`
}

// ConversationRepository persists conversations in BadgerDB.
//
// Message keys are formatted as "msg:{conversation_id}:{seq_padded}" with a
// 12-digit zero-padded sequence taken from the conversation header inside
// the same transaction. Lexicographic key order therefore equals append
// order, independent of wall-clock skew, and the read-increment-write of the
// sequence is atomic per transaction.
type ConversationRepository struct {
	db           *badger.DB
	log          *slog.Logger
	limitHistory *int
}

func NewConversationRepository(db *badger.DB, log *slog.Logger, limitHistory *int) *ConversationRepository {
	return &ConversationRepository{db: db, log: log, limitHistory: limitHistory}
}

func conversationKey(id domain.ConversationID) []byte {
	return []byte("conv:" + id.String())
}

func messageKey(id domain.ConversationID, seq uint64) []byte {
	return []byte(fmt.Sprintf("msg:%s:%012d", id, seq))
}

func messagePrefix(id domain.ConversationID) []byte {
	return []byte(fmt.Sprintf("msg:%s:", id))
}

func (r *ConversationRepository) Create(_ context.Context, title string, participants []string) (domain.Conversation, error) {
	now := time.Now().UTC()
	record := conversationRecord{
		ID:           uuid.NewString(),
		Title:        title,
		Participants: participants,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(conversationKey(domain.ConversationID(record.ID)), data)
	})
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return toConversation(record, nil), nil
}

func (r *ConversationRepository) Load(_ context.Context, id domain.ConversationID) (domain.Conversation, error) {
	var record conversationRecord
	var messages []domain.Message

	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		if record, err = readRecord(txn, id); err != nil {
			return err
		}
		messages, err = readMessages(txn, id)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return domain.Conversation{}, errs.ErrNotFound
		}
		return domain.Conversation{}, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return toConversation(record, messages), nil
}

// AppendMessage atomically assigns the next sequence number, stores the
// message under it, and bumps the conversation header in one transaction.
// It returns the full updated conversation so callers get the history
// without a second load.
func (r *ConversationRepository) AppendMessage(_ context.Context, id domain.ConversationID, msg domain.Message) (domain.Conversation, error) {
	var record conversationRecord
	var messages []domain.Message

	err := r.db.Update(func(txn *badger.Txn) error {
		var err error
		if record, err = readRecord(txn, id); err != nil {
			return err
		}

		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if err = txn.Set(messageKey(id, record.NextSeq), data); err != nil {
			return err
		}

		record.NextSeq++
		record.UpdatedAt = msg.CreatedAt
		header, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err = txn.Set(conversationKey(id), header); err != nil {
			return err
		}

		messages, err = readMessages(txn, id)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return domain.Conversation{}, errs.ErrNotFound
		}
		return domain.Conversation{}, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return toConversation(record, messages), nil
}

// Remove deletes the conversation header and its whole message log.
// Individual message deletion is deliberately unsupported. Deletions go
// through a write batch instead of a single transaction because a long log
// would exceed badger's transaction size limit.
func (r *ConversationRepository) Remove(_ context.Context, id domain.ConversationID) error {
	var keys [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		if _, err := readRecord(txn, id); err != nil {
			return err
		}

		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := messagePrefix(id)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}

	batch := r.db.NewWriteBatch()
	defer batch.Cancel()
	for _, key := range keys {
		if err = batch.Delete(key); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrStorage, err)
		}
	}
	if err = batch.Delete(conversationKey(id)); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	if err = batch.Flush(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return nil
}

func (r *ConversationRepository) ListForUser(_ context.Context, userID string) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("conv:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record conversationRecord
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &record)
			})
			if err != nil {
				return err
			}
			conversation := toConversation(record, nil)
			if conversation.HasParticipant(userID) {
				conversations = append(conversations, conversation)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return conversations, nil
}

// Messages pages backwards through a conversation's log, newest first.
// The cursor is the sequence part of the last key returned; passing it back
// resumes right before that position.
func (r *ConversationRepository) Messages(_ context.Context, id domain.ConversationID, cursor *string) ([]domain.Message, *string, error) {
	var messages []domain.Message
	var lastKey string

	err := r.db.View(func(txn *badger.Txn) error {
		if _, err := readRecord(txn, id); err != nil {
			return err
		}

		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := messagePrefix(id)
		seekKey := append([]byte{}, prefix...)
		switch cursor {
		case nil:
			// Past the highest possible sequence, then walk backwards
			seekKey = append(seekKey, []byte("999999999999")...)
		default:
			seekKey = append(seekKey, []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if r.limitHistory != nil && len(messages) == *r.limitHistory {
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			var msg domain.Message
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &msg)
			})
			if err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil, errs.ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return messages, &lastKey, nil
}

func readRecord(txn *badger.Txn, id domain.ConversationID) (conversationRecord, error) {
	var record conversationRecord
	item, err := txn.Get(conversationKey(id))
	if err != nil {
		return conversationRecord{}, err
	}
	err = item.Value(func(value []byte) error {
		return json.Unmarshal(value, &record)
	})
	return record, err
}

func readMessages(txn *badger.Txn, id domain.ConversationID) ([]domain.Message, error) {
	var messages []domain.Message
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := messagePrefix(id)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var msg domain.Message
		err := it.Item().Value(func(value []byte) error {
			return json.Unmarshal(value, &msg)
		})
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func toConversation(record conversationRecord, messages []domain.Message) domain.Conversation {
	return domain.Conversation{
		ID:           domain.ConversationID(record.ID),
		Title:        record.Title,
		Participants: record.Participants,
		Messages:     messages,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func isNotFound(err error) bool {
	return stderrors.Is(err, badger.ErrKeyNotFound)
}
