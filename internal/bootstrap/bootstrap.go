// Package bootstrap assembles the services shared by the API server and the
// terminal client.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/zhouzirui/alex-chat/backend/internal/config"
	"github.com/zhouzirui/alex-chat/backend/internal/model/persona"
	"github.com/zhouzirui/alex-chat/backend/internal/service/ai"
	"github.com/zhouzirui/alex-chat/backend/internal/service/chat"
	"github.com/zhouzirui/alex-chat/backend/internal/service/conversation"
)

// Services bundles the wired application services.
type Services struct {
	Personas *persona.MemoryStore
	AI       *ai.Service
	Chat     *chat.Service
	Ordering conversation.Ordering
}

// Build creates the persona store, the completion provider and the session
// service. A missing or broken provider is logged and every turn falls back.
func Build(ctx context.Context, cfg *config.Config) (*Services, error) {
	personas, err := loadPersonas(cfg.Chat.PersonaFile)
	if err != nil {
		return nil, err
	}

	ordering, err := conversation.ParseOrdering(cfg.Chat.Ordering)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_ORDERING: %w", err)
	}

	var aiService *ai.Service
	var completer conversation.Completer
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality, replies will use the fallback message")
		} else {
			completer = aiService
			log.Printf("AI service initialized provider=%s model=%s", cfg.AI.Provider, cfg.AI.Model)
		}
	} else {
		log.Printf("%s credentials not configured, skipping AI initialization", cfg.AI.Provider)
	}

	return &Services{
		Personas: personas,
		AI:       aiService,
		Chat:     chat.NewService(personas, completer, ordering),
		Ordering: ordering,
	}, nil
}

func loadPersonas(path string) (*persona.MemoryStore, error) {
	if path == "" {
		return persona.NewMemoryStore(persona.Seed()), nil
	}

	items, err := persona.LoadFile(path)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %d personas from %s", len(items), path)
	return persona.NewMemoryStore(items), nil
}
