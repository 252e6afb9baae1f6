package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"
	errs "chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newMessage(sender, content string) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		SenderID:  sender,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Annotation: domain.Annotation{
			Sentiment: domain.SentimentNeutral,
			Intent:    domain.IntentStatement,
		},
	}
}

func TestConversationRepository_Create_And_Load(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openTestDB(t), slog.Default(), nil)

	created, err := repo.Create(ctx, "standup", []string{"alice", "bob"})
	req.NoError(err)
	req.NotEmpty(created.ID)

	loaded, err := repo.Load(ctx, created.ID)
	req.NoError(err)
	req.Equal("standup", loaded.Title)
	req.Equal([]string{"alice", "bob"}, loaded.Participants)
	req.Empty(loaded.Messages)
}

func TestConversationRepository_Load_NotFound(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(openTestDB(t), slog.Default(), nil)

	_, err := repo.Load(context.Background(), "missing")
	req.ErrorIs(err, errs.ErrNotFound)
}

func TestConversationRepository_Append_PreservesOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openTestDB(t), slog.Default(), nil)

	created, err := repo.Create(ctx, "ordered", []string{"alice"})
	req.NoError(err)

	for i := 0; i < 15; i++ {
		_, err = repo.AppendMessage(ctx, created.ID, newMessage("alice", fmt.Sprintf("message %d", i)))
		req.NoError(err)
	}

	loaded, err := repo.Load(ctx, created.ID)
	req.NoError(err)
	req.Len(loaded.Messages, 15)
	for i, msg := range loaded.Messages {
		req.Equal(fmt.Sprintf("message %d", i), msg.Content)
	}
}

func TestConversationRepository_Append_ReturnsUpdatedHistory(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openTestDB(t), slog.Default(), nil)

	created, err := repo.Create(ctx, "history", []string{"alice"})
	req.NoError(err)

	updated, err := repo.AppendMessage(ctx, created.ID, newMessage("alice", "first"))
	req.NoError(err)
	req.Len(updated.Messages, 1)

	updated, err = repo.AppendMessage(ctx, created.ID, newMessage("alice", "second"))
	req.NoError(err)
	req.Len(updated.Messages, 2)
	req.Equal("second", updated.Messages[1].Content)
}

func TestConversationRepository_Append_UnknownConversation(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(openTestDB(t), slog.Default(), nil)

	_, err := repo.AppendMessage(context.Background(), "ghost", newMessage("alice", "hello"))
	req.ErrorIs(err, errs.ErrNotFound)
}

func TestConversationRepository_Remove(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openTestDB(t), slog.Default(), nil)

	created, err := repo.Create(ctx, "doomed", []string{"alice"})
	req.NoError(err)
	_, err = repo.AppendMessage(ctx, created.ID, newMessage("alice", "soon gone"))
	req.NoError(err)

	req.NoError(repo.Remove(ctx, created.ID))

	_, err = repo.Load(ctx, created.ID)
	req.ErrorIs(err, errs.ErrNotFound)

	// Idempotence is not promised: a second remove reports NotFound
	req.ErrorIs(repo.Remove(ctx, created.ID), errs.ErrNotFound)
}

func TestConversationRepository_Remove_Long_Log(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openTestDB(t), slog.Default(), nil)

	created, err := repo.Create(ctx, "busy", []string{"alice"})
	req.NoError(err)
	for i := 0; i < 400; i++ {
		_, err = repo.AppendMessage(ctx, created.ID, newMessage("alice", fmt.Sprintf("message %d", i)))
		req.NoError(err)
	}

	req.NoError(repo.Remove(ctx, created.ID))

	_, err = repo.Load(ctx, created.ID)
	req.ErrorIs(err, errs.ErrNotFound)
	_, _, err = repo.Messages(ctx, created.ID, nil)
	req.ErrorIs(err, errs.ErrNotFound)
}

func TestConversationRepository_ListForUser(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openTestDB(t), slog.Default(), nil)

	_, err := repo.Create(ctx, "alice and bob", []string{"alice", "bob"})
	req.NoError(err)
	_, err = repo.Create(ctx, "bob only", []string{"bob"})
	req.NoError(err)

	conversations, err := repo.ListForUser(ctx, "alice")
	req.NoError(err)
	req.Len(conversations, 1)
	req.Equal("alice and bob", conversations[0].Title)

	conversations, err = repo.ListForUser(ctx, "bob")
	req.NoError(err)
	req.Len(conversations, 2)
}

func TestConversationRepository_Messages_Pagination(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewConversationRepository(openTestDB(t), slog.Default(), lo.ToPtr(2))

	created, err := repo.Create(ctx, "paged", []string{"alice"})
	req.NoError(err)
	for i := 1; i <= 5; i++ {
		_, err = repo.AppendMessage(ctx, created.ID, newMessage("alice", fmt.Sprintf("message %d", i)))
		req.NoError(err)
	}

	// Page 1: newest first
	page1, cursor1, err := repo.Messages(ctx, created.ID, nil)
	req.NoError(err)
	req.Len(page1, 2)
	req.Equal("message 5", page1[0].Content)
	req.Equal("message 4", page1[1].Content)

	// Page 2 resumes before the cursor
	page2, cursor2, err := repo.Messages(ctx, created.ID, cursor1)
	req.NoError(err)
	req.Len(page2, 2)
	req.Equal("message 3", page2[0].Content)
	req.Equal("message 2", page2[1].Content)

	// Page 3: the remainder
	page3, _, err := repo.Messages(ctx, created.ID, cursor2)
	req.NoError(err)
	req.Len(page3, 1)
	req.Equal("message 1", page3[0].Content)
}
