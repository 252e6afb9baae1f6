package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Session is one live WebSocket connection. Outbound traffic flows through
// the send channel so a single goroutine owns the connection writes; the
// broadcast path enqueues without blocking and drops on a full buffer rather
// than stalling the pipeline.
type Session struct {
	ID   string
	User domain.User

	log  *slog.Logger
	conn *websocket.Conn
	send chan Frame
}

func NewSession(log *slog.Logger, conn *websocket.Conn, user domain.User, sendBuffer int) *Session {
	return &Session{
		ID:   uuid.NewString(),
		User: user,
		log:  log,
		conn: conn,
		send: make(chan Frame, sendBuffer),
	}
}

// Consume turns a domain event into its wire frame and enqueues it.
// This is the sink the registry fans broadcasts out to.
func (s *Session) Consume(_ context.Context, evt event.DomainEvent) error {
	var frame Frame
	var err error

	switch e := evt.(type) {
	case event.MessageAdded:
		frame, err = NewFrame(EventNewMessage, toMessagePayload(e.Conversation, e.Message))
	case event.TypingStarted:
		frame, err = NewFrame(EventUserTyping, PresencePayload{
			ConversationID: e.Conversation.String(), UserID: e.UserID})
	case event.TypingStopped:
		frame, err = NewFrame(EventUserStopTyping, PresencePayload{
			ConversationID: e.Conversation.String(), UserID: e.UserID})
	default:
		return nil
	}
	if err != nil {
		return err
	}

	s.enqueue(frame)
	return nil
}

// SendError reports a failure to this session only.
func (s *Session) SendError(code, message string) {
	frame, err := NewFrame(EventError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	s.enqueue(frame)
}

func (s *Session) enqueue(frame Frame) {
	select {
	case s.send <- frame:
	default:
		s.log.Warn("Session send buffer full, frame dropped",
			"session_id", s.ID,
			"event", frame.Event)
	}
}

// readPump reads inbound frames and hands them to dispatch. It owns the
// connection reads and returns on any read error.
func (s *Session) readPump(dispatch func(Frame)) {
	defer func() {
		if err := s.conn.Close(); err != nil {
			s.log.Debug("Connection close", "session_id", s.ID, "error", err)
		}
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Read error", "session_id", s.ID, "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.SendError("bad_frame", "frame is not valid JSON")
			continue
		}
		dispatch(frame)
	}
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
