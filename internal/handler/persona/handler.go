package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/alex-chat/backend/internal/model/persona"
	"github.com/zhouzirui/alex-chat/backend/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas persona.Store
}

// New 创建persona处理器
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/{personaID}", h.handleGetPersona)
}

// handleListPersonas 列出所有persona
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}

func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personas.FindByID(chi.URLParam(r, "personaID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
