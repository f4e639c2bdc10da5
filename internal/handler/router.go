package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/alex-chat/backend/internal/handler/chat"
	"github.com/zhouzirui/alex-chat/backend/internal/handler/persona"
	"github.com/zhouzirui/alex-chat/backend/internal/handler/stream"
	"github.com/zhouzirui/alex-chat/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/alex-chat/backend/internal/middleware"
	personaModel "github.com/zhouzirui/alex-chat/backend/internal/model/persona"
	chatService "github.com/zhouzirui/alex-chat/backend/internal/service/chat"
	"github.com/zhouzirui/alex-chat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	personaHandler := persona.New(personas)
	chatHandler := chat.New(chatSvc)
	streamHandler := stream.New(chatSvc)
	wsHandler := ws.NewWebSocketHandler(chatSvc)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterWebSocketRoutes(api)
	})

	return r
}
