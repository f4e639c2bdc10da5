package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/alex-chat/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/alex-chat/backend/internal/service/chat"
	"github.com/zhouzirui/alex-chat/backend/internal/service/conversation"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocketHandler pushes transcript updates to live renderers.
type WebSocketHandler struct {
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(chatSvc *chatservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage carries a send (type "text") or a draft update (type "draft").
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// conn serialises writes; gorilla allows a single concurrent writer.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	ctrl, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer wsConn.Close()
	c := &conn{ws: wsConn}

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Submits outlive the connection so a reply still lands in the
	// transcript after the client goes away.
	submitCtx := context.WithoutCancel(r.Context())

	// The subscriber only signals; the writer goroutine renders the latest
	// state so a slow client never holds up Submit.
	changed := make(chan struct{}, 1)
	unsubscribe := ctrl.Subscribe(func([]chat.Message) {
		signalChange(changed)
	})
	defer unsubscribe()

	wsConn.SetReadDeadline(time.Now().Add(readTimeout))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, c)

	h.sendTranscript(c, sessionID, ctrl.Display())
	go h.writeLoop(ctx, c, sessionID, ctrl, changed)

	for {
		var msg inboundMessage
		if err := wsConn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		wsConn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(c, "session mismatch")
			continue
		}

		h.handleMessage(submitCtx, c, ctrl, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, c *conn, ctrl *conversation.Controller, msg *inboundMessage) {
	var text TextMessage
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			h.sendError(c, "invalid text payload")
			return
		}
	}

	switch msg.Type {
	case "text":
		// Submit blocks until the reply; run it aside so the socket keeps reading.
		go ctrl.Submit(ctx, text.Text)
	case "draft":
		ctrl.SetPendingInput(text.Text)
	case "send":
		go ctrl.SubmitPending(ctx)
	default:
		h.sendError(c, "unsupported message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) sendTranscript(c *conn, sessionID string, entries []chat.DisplayEntry) {
	msg := outgoingMessage{
		Type:      "transcript",
		SessionID: sessionID,
		Data:      entries,
		Timestamp: time.Now().Unix(),
	}
	if err := c.writeJSON(msg); err != nil {
		log.Printf("[websocket] write transcript failed: %v", err)
	}
}

func (h *WebSocketHandler) sendError(c *conn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := c.writeJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

// signalChange marks the transcript dirty without blocking; pending signals coalesce.
func signalChange(changed chan<- struct{}) {
	select {
	case changed <- struct{}{}:
	default:
	}
}

// writeLoop 推送最新的会话记录
func (h *WebSocketHandler) writeLoop(ctx context.Context, c *conn, sessionID string, ctrl *conversation.Controller, changed <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			h.sendTranscript(c, sessionID, ctrl.Display())
		}
	}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
