// Command client is a small terminal client: it logs in over REST, prints
// the recent history, then joins the conversation over WebSocket. Lines
// typed on stdin become messages; incoming frames print as they arrive.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-relay/infrastructure/ws"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerAddr     string `envconfig:"CHAT_SERVER_ADDR" default:"localhost:8080"`
	Email          string `envconfig:"CHAT_EMAIL" required:"true"`
	Password       string `envconfig:"CHAT_PASSWORD" required:"true"`
	ConversationID string `envconfig:"CHAT_CONVERSATION_ID" required:"true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := login(config)
	if err != nil {
		return exitRuntime, err
	}

	if err := printHistory(config, token); err != nil {
		return exitRuntime, err
	}

	wsURL := url.URL{Scheme: "ws", Host: config.ServerAddr, Path: "/ws",
		RawQuery: "token=" + url.QueryEscape(token)}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", wsURL.String(), err)
	}
	defer conn.Close()

	if err := writeFrame(conn, ws.EventJoinChat,
		ws.JoinPayload{ConversationID: config.ConversationID}); err != nil {
		return exitRuntime, err
	}

	color.Green.Printf(">>> Connected to %s, conversation %s (Ctrl+C to quit)\n",
		config.ServerAddr, config.ConversationID)

	go readInput(conn, config.ConversationID)

	for {
		var frame ws.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		}
		render(frame)
	}
}

func login(config Config) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    config.Email,
		"password": config.Password,
	})
	res, err := http.Post(fmt.Sprintf("http://%s/api/login", config.ServerAddr),
		"application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login refused: status %d", res.StatusCode)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("login response: %w", err)
	}
	return payload.Token, nil
}

// printHistory renders the latest page of the conversation as a table.
func printHistory(config Config, token string) error {
	endpoint := fmt.Sprintf("http://%s/api/conversations/%s/messages",
		config.ServerAddr, url.PathEscape(config.ConversationID))
	request, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", "Bearer "+token)

	res, err := http.DefaultClient.Do(request)
	if err != nil {
		return fmt.Errorf("history request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("history refused: status %d", res.StatusCode)
	}

	var payload struct {
		Messages []struct {
			SenderID  string    `json:"sender_id"`
			Content   string    `json:"content"`
			IsAI      bool      `json:"is_ai"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return fmt.Errorf("history response: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Author", "Message"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	// The endpoint pages newest first; render oldest first.
	for i := len(payload.Messages) - 1; i >= 0; i-- {
		msg := payload.Messages[i]
		author := msg.SenderID
		if msg.IsAI {
			author = "assistant"
		}
		table.Append([]string{msg.CreatedAt.Format(time.TimeOnly), author, msg.Content})
	}
	table.Render()
	return nil
}

func readInput(conn *websocket.Conn, conversationID string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}
		err := writeFrame(conn, ws.EventSendMessage,
			ws.SendPayload{ConversationID: conversationID, Content: text})
		if err != nil {
			color.Red.Printf("send failed: %v\n", err)
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, event string, payload any) error {
	frame, err := ws.NewFrame(event, payload)
	if err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}

func render(frame ws.Frame) {
	switch frame.Event {
	case ws.EventNewMessage:
		var msg ws.MessagePayload
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			return
		}
		author := msg.SenderID
		print := color.Cyan.Printf
		if msg.IsAI {
			author = "assistant"
			print = color.Magenta.Printf
		}
		print("[%s] %s: %s\n", msg.CreatedAt.Format(time.TimeOnly), author, msg.Content)
		if len(msg.Annotation.Entities) > 0 {
			color.Gray.Printf("    entities: %v\n", msg.Annotation.Entities)
		}

	case ws.EventUserTyping:
		var presence ws.PresencePayload
		if err := json.Unmarshal(frame.Data, &presence); err != nil {
			return
		}
		color.Yellow.Printf("... %s is typing\n", presence.UserID)

	case ws.EventUserStopTyping:
		// Quiet: the next message or silence says it all.

	case ws.EventError:
		var failure ws.ErrorPayload
		if err := json.Unmarshal(frame.Data, &failure); err != nil {
			return
		}
		color.Red.Printf("error [%s]: %s\n", failure.Code, failure.Message)
	}
}
