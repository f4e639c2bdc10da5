package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/alex-chat/backend/internal/model/chat"
	"github.com/zhouzirui/alex-chat/backend/internal/model/persona"
	chatservice "github.com/zhouzirui/alex-chat/backend/internal/service/chat"
	"github.com/zhouzirui/alex-chat/backend/internal/service/conversation"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (f frame) entries(t *testing.T) []chat.DisplayEntry {
	t.Helper()
	var entries []chat.DisplayEntry
	if err := json.Unmarshal(f.Data, &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	return entries
}

func startServer(t *testing.T, completer conversation.Completer) (*httptest.Server, string) {
	t.Helper()
	srv, _, sessionID := startServerWithService(t, completer)
	return srv, sessionID
}

func startServerWithService(t *testing.T, completer conversation.Completer) (*httptest.Server, *chatservice.Service, string) {
	t.Helper()
	chatSvc := chatservice.NewService(persona.NewMemoryStore(persona.Seed()), completer, conversation.Serialized)
	session, err := chatSvc.CreateSession(context.Background(), "alex")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	r := chi.NewRouter()
	NewWebSocketHandler(chatSvc).RegisterWebSocketRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, chatSvc, session.ID
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func readFrame(t *testing.T, c *websocket.Conn) frame {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := c.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestWebSocketPushesUserEchoBeforeReply(t *testing.T) {
	release := make(chan struct{})
	srv, sessionID := startServer(t, conversation.CompleterFunc(func(ctx context.Context, _ []chat.Message) (string, error) {
		<-release
		return "Hi! 😊", nil
	}))
	c := dial(t, srv, sessionID)

	initial := readFrame(t, c)
	if initial.Type != "transcript" {
		t.Fatalf("unexpected initial frame type %s", initial.Type)
	}
	if entries := initial.entries(t); len(entries) != 1 || entries[0].Text != persona.DefaultGreeting {
		t.Fatalf("unexpected initial entries %+v", entries)
	}

	data, _ := json.Marshal(TextMessage{Text: "Hello"})
	if err := c.WriteJSON(inboundMessage{Type: "text", Data: data}); err != nil {
		t.Fatalf("write: %v", err)
	}

	echo := readFrame(t, c).entries(t)
	if len(echo) != 2 || echo[1].Text != "Hello" || echo[1].Alignment != chat.AlignRight {
		t.Fatalf("expected user echo, got %+v", echo)
	}

	close(release)
	reply := readFrame(t, c).entries(t)
	if len(reply) != 3 || reply[2].Text != "Hi! 😊" || reply[2].SpeakerLabel != "Alex" {
		t.Fatalf("expected reply, got %+v", reply)
	}
}

func TestWebSocketDraftThenSendSubmitsPendingInput(t *testing.T) {
	release := make(chan struct{})
	srv, chatSvc, sessionID := startServerWithService(t, conversation.CompleterFunc(func(ctx context.Context, _ []chat.Message) (string, error) {
		<-release
		return "Hi! 😊", nil
	}))
	ctrl, err := chatSvc.Controller(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Controller err: %v", err)
	}
	c := dial(t, srv, sessionID)
	readFrame(t, c)

	data, _ := json.Marshal(TextMessage{Text: "Hello"})
	if err := c.WriteJSON(inboundMessage{Type: "draft", Data: data}); err != nil {
		t.Fatalf("write draft: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for ctrl.PendingInput() != "Hello" {
		if time.Now().After(deadline) {
			t.Fatalf("draft never reached controller, got %q", ctrl.PendingInput())
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := c.WriteJSON(inboundMessage{Type: "send"}); err != nil {
		t.Fatalf("write send: %v", err)
	}

	echo := readFrame(t, c).entries(t)
	if len(echo) != 2 || echo[1].Text != "Hello" || echo[1].Alignment != chat.AlignRight {
		t.Fatalf("expected user echo, got %+v", echo)
	}
	if got := ctrl.PendingInput(); got != "" {
		t.Fatalf("expected pending input cleared, got %q", got)
	}

	close(release)
	reply := readFrame(t, c).entries(t)
	if len(reply) != 3 || reply[2].Text != "Hi! 😊" {
		t.Fatalf("expected reply, got %+v", reply)
	}
}

func TestSignalChangeNeverBlocks(t *testing.T) {
	changed := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			signalChange(changed)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("signalChange blocked with nobody draining")
	}
	if len(changed) != 1 {
		t.Fatalf("expected signals to coalesce into one, got %d", len(changed))
	}
}

func TestWebSocketRejectsUnknownType(t *testing.T) {
	srv, sessionID := startServer(t, nil)
	c := dial(t, srv, sessionID)
	readFrame(t, c)

	if err := c.WriteJSON(inboundMessage{Type: "audio"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if f := readFrame(t, c); f.Type != "error" {
		t.Fatalf("expected error frame, got %s", f.Type)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := startServer(t, nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/missing"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail for unknown session")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}
