package stream

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/alex-chat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/alex-chat/backend/internal/service/chat"
	"github.com/zhouzirui/alex-chat/backend/pkg/utils"
)

const keepAliveInterval = 25 * time.Second

// Handler streams transcript snapshots via Server-Sent Events
type Handler struct {
	chatSvc   *chatService.Service
	keepAlive time.Duration
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc, keepAlive: keepAliveInterval}
}

// RegisterRoutes 注册SSE路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleEvents)
}

// handleEvents sends the current display list, then one "transcript" event per
// change until the client disconnects. Bursts collapse to the latest state.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	ctrl, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	changed := make(chan struct{}, 1)
	unsubscribe := ctrl.Subscribe(func([]chat.Message) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	seq := 0
	send := func() bool {
		seq++
		if err := utils.SendSSEEvent(w, flusher, seq, "transcript", ctrl.Display()); err != nil {
			log.Printf("[stream] session=%s: %v", sessionID, err)
			return false
		}
		return true
	}
	if !send() {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("[stream] client left session=%s", sessionID)
			return
		case <-changed:
			if !send() {
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "ping"); err != nil {
				return
			}
		}
	}
}
