package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/alex-chat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/alex-chat/backend/internal/service/chat"
	"github.com/zhouzirui/alex-chat/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Delete("/", h.handleDeleteSession)
		r.Get("/messages", h.handleListMessages)
		r.Post("/messages", h.handleSubmit)
	})
}

type sessionResponse struct {
	Session  chat.Session        `json:"session"`
	Messages []chat.DisplayEntry `json:"messages"`
}

type messagesResponse struct {
	SessionID string              `json:"sessionId"`
	Messages  []chat.DisplayEntry `json:"messages"`
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.PersonaID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctrl, err := h.chatSvc.Controller(r.Context(), session.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sessionResponse{Session: session, Messages: ctrl.Display()})
}

// handleListMessages 返回会话的展示列表
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ctrl, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, messagesResponse{SessionID: sessionID, Messages: ctrl.Display()})
}

// handleSubmit 提交用户消息并等待助手回复。空白内容被静默忽略。
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ctrl, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctrl.Submit(r.Context(), payload.Content)
	utils.RespondJSON(w, http.StatusOK, messagesResponse{SessionID: sessionID, Messages: ctrl.Display()})
}

// handleDeleteSession 结束会话并丢弃对话记录
func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, chatService.ErrSessionNotFound) {
		status = http.StatusNotFound
	}
	utils.RespondError(w, status, err.Error())
}
