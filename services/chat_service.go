package services

import (
	"context"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
	"chat-relay/runtime"
)

type IChatService interface {
	Send(ctx context.Context, user domain.User, sessionID string, conversationID domain.ConversationID, content string) error
	JoinRoom(ctx context.Context, user domain.User, sessionID string, conversationID domain.ConversationID, sink contract.EventSink) error
	LeaveRoom(sessionID string, conversationID domain.ConversationID)
	Disconnect(sessionID string)
	Typing(ctx context.Context, sessionID string, user domain.User, conversationID domain.ConversationID)
	StopTyping(ctx context.Context, sessionID string, user domain.User, conversationID domain.ConversationID)
	CreateConversation(ctx context.Context, user domain.User, title string, participants []string) (domain.Conversation, error)
	ListConversations(ctx context.Context, user domain.User) ([]domain.Conversation, error)
	History(ctx context.Context, user domain.User, conversationID domain.ConversationID, cursor *string) ([]domain.Message, *string, error)
	Search(ctx context.Context, user domain.User, conversationID domain.ConversationID, terms string, limit int) ([]repositories.SearchHit, error)
	Delete(ctx context.Context, user domain.User, conversationID domain.ConversationID) error
}

// ChatService is the facade the transports talk to. It owns authorization
// for read paths; the pipeline re-checks sends itself.
type ChatService struct {
	repository repositories.IConversationRepository
	index      repositories.ISearchIndex
	pipeline   *runtime.Pipeline
	presence   *runtime.PresenceTracker
	registry   contract.IRegistry
}

func NewChatService(
	repository repositories.IConversationRepository,
	index repositories.ISearchIndex,
	pipeline *runtime.Pipeline,
	presence *runtime.PresenceTracker,
	registry contract.IRegistry,
) *ChatService {
	return &ChatService{
		repository: repository,
		index:      index,
		pipeline:   pipeline,
		presence:   presence,
		registry:   registry,
	}
}

func (s *ChatService) Send(ctx context.Context, user domain.User, sessionID string,
	conversationID domain.ConversationID, content string) error {
	return s.pipeline.Send(ctx, user, sessionID, conversationID, content)
}

// JoinRoom subscribes a session's sink to a conversation room after checking
// the user belongs to the conversation.
func (s *ChatService) JoinRoom(ctx context.Context, user domain.User, sessionID string,
	conversationID domain.ConversationID, sink contract.EventSink) error {
	conversation, err := s.repository.Load(ctx, conversationID)
	if err != nil {
		return err
	}
	if !domain.CanJoin(user, conversation) {
		return errors.ErrForbidden
	}
	s.registry.Subscribe(sessionID, conversationID, sink)
	return nil
}

func (s *ChatService) LeaveRoom(sessionID string, conversationID domain.ConversationID) {
	s.registry.Unsubscribe(sessionID, conversationID)
}

func (s *ChatService) Disconnect(sessionID string) {
	s.registry.Disconnect(sessionID)
}

func (s *ChatService) Typing(ctx context.Context, sessionID string, user domain.User,
	conversationID domain.ConversationID) {
	s.presence.Typing(ctx, sessionID, user.ID, conversationID)
}

func (s *ChatService) StopTyping(ctx context.Context, sessionID string, user domain.User,
	conversationID domain.ConversationID) {
	s.presence.StopTyping(ctx, sessionID, user.ID, conversationID)
}

// CreateConversation always counts the creator among the participants.
func (s *ChatService) CreateConversation(ctx context.Context, user domain.User,
	title string, participants []string) (domain.Conversation, error) {
	found := false
	for _, p := range participants {
		if p == user.ID {
			found = true
			break
		}
	}
	if !found {
		participants = append(participants, user.ID)
	}
	return s.repository.Create(ctx, title, participants)
}

func (s *ChatService) ListConversations(ctx context.Context, user domain.User) ([]domain.Conversation, error) {
	return s.repository.ListForUser(ctx, user.ID)
}

func (s *ChatService) History(ctx context.Context, user domain.User,
	conversationID domain.ConversationID, cursor *string) ([]domain.Message, *string, error) {
	if err := s.authorizeRead(ctx, user, conversationID); err != nil {
		return nil, nil, err
	}
	return s.repository.Messages(ctx, conversationID, cursor)
}

func (s *ChatService) Search(ctx context.Context, user domain.User,
	conversationID domain.ConversationID, terms string, limit int) ([]repositories.SearchHit, error) {
	if err := s.authorizeRead(ctx, user, conversationID); err != nil {
		return nil, err
	}
	return s.index.Search(ctx, conversationID, terms, limit)
}

// Delete removes a conversation and its whole message log. Participants and
// admins only.
func (s *ChatService) Delete(ctx context.Context, user domain.User, conversationID domain.ConversationID) error {
	conversation, err := s.repository.Load(ctx, conversationID)
	if err != nil {
		return err
	}
	if !domain.CanDelete(user, conversation) {
		return errors.ErrForbidden
	}
	if err = s.repository.Remove(ctx, conversationID); err != nil {
		return err
	}
	s.pipeline.DropGate(conversationID)
	return nil
}

func (s *ChatService) authorizeRead(ctx context.Context, user domain.User, conversationID domain.ConversationID) error {
	conversation, err := s.repository.Load(ctx, conversationID)
	if err != nil {
		return err
	}
	if !domain.CanJoin(user, conversation) {
		return errors.ErrForbidden
	}
	return nil
}
