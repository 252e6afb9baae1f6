// Package ws exposes the chat system over WebSocket. One connection is one
// session; authentication happens once at upgrade time via a token query
// parameter.
package ws

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"chat-relay/domain"
	errs "chat-relay/errors"
	"chat-relay/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

var validate = validator.New()

type Server struct {
	log        *slog.Logger
	chat       services.IChatService
	auth       services.IAuthService
	upgrader   websocket.Upgrader
	sendBuffer int

	// baseCtx outlives any single connection. A send that already passed
	// authorization must reach a terminal state even if the originating
	// session disconnects mid-run.
	baseCtx context.Context
}

func NewServer(baseCtx context.Context, log *slog.Logger,
	chat services.IChatService, auth services.IAuthService, sendBuffer int) *Server {
	return &Server{
		log:  log,
		chat: chat,
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sendBuffer: sendBuffer,
		baseCtx:    baseCtx,
	}
}

// Handle upgrades GET /ws. The token travels as a query parameter because
// browsers cannot set headers on WebSocket handshakes.
func (s *Server) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	user, err := s.auth.Authenticate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("Upgrade failed", "error", err)
		return
	}

	session := NewSession(s.log, conn, user, s.sendBuffer)
	s.log.Info("Session connected", "session_id", session.ID, "user_id", user.ID)

	go session.writePump()
	go func() {
		session.readPump(func(frame Frame) { s.dispatch(session, frame) })
		s.chat.Disconnect(session.ID)
		s.log.Info("Session disconnected", "session_id", session.ID, "user_id", user.ID)
	}()
}

func (s *Server) dispatch(session *Session, frame Frame) {
	switch frame.Event {
	case EventJoinChat:
		var payload JoinPayload
		if !s.decode(session, frame, &payload) {
			return
		}
		err := s.chat.JoinRoom(s.baseCtx, session.User, session.ID,
			domain.ConversationID(payload.ConversationID), session)
		if err != nil {
			session.SendError(errorCode(err), "cannot join conversation")
		}

	case EventLeaveChat:
		var payload LeavePayload
		if !s.decode(session, frame, &payload) {
			return
		}
		s.chat.LeaveRoom(session.ID, domain.ConversationID(payload.ConversationID))

	case EventSendMessage:
		var payload SendPayload
		if !s.decode(session, frame, &payload) {
			return
		}
		// The pipeline run detaches from the connection: only the error
		// comes back to this session.
		go func() {
			err := s.chat.Send(s.baseCtx, session.User, session.ID,
				domain.ConversationID(payload.ConversationID), payload.Content)
			if err != nil {
				session.SendError(errorCode(err), "message rejected")
			}
		}()

	case EventTyping:
		var payload TypingPayload
		if !s.decode(session, frame, &payload) {
			return
		}
		s.chat.Typing(s.baseCtx, session.ID, session.User,
			domain.ConversationID(payload.ConversationID))

	case EventStopTyping:
		var payload TypingPayload
		if !s.decode(session, frame, &payload) {
			return
		}
		s.chat.StopTyping(s.baseCtx, session.ID, session.User,
			domain.ConversationID(payload.ConversationID))

	default:
		session.SendError("unknown_event", "unsupported event: "+frame.Event)
	}
}

func (s *Server) decode(session *Session, frame Frame, payload any) bool {
	if err := json.Unmarshal(frame.Data, payload); err != nil {
		session.SendError("bad_payload", "payload does not match event "+frame.Event)
		return false
	}
	if err := validate.Struct(payload); err != nil {
		session.SendError("bad_payload", err.Error())
		return false
	}
	return true
}

func errorCode(err error) string {
	switch {
	case stderrors.Is(err, errs.ErrNotFound):
		return "not_found"
	case stderrors.Is(err, errs.ErrForbidden):
		return "forbidden"
	case stderrors.Is(err, errs.ErrEmptyContent):
		return "empty_content"
	case stderrors.Is(err, errs.ErrStorage):
		return "storage_failure"
	default:
		return "internal"
	}
}
