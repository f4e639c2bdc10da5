package chat

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/alex-chat/backend/internal/model/chat"
	"github.com/zhouzirui/alex-chat/backend/internal/model/persona"
	"github.com/zhouzirui/alex-chat/backend/internal/service/ai"
	"github.com/zhouzirui/alex-chat/backend/internal/service/conversation"
)

var (
	ErrPersonaRequired = errors.New("persona id is required")
	ErrPersonaNotFound = errors.New("persona not found")
	ErrSessionNotFound = errors.New("session not found")
)

type sessionEntry struct {
	session    chat.Session
	controller *conversation.Controller
}

// Service keeps one conversation controller per session, in memory only.
type Service struct {
	personas  persona.Store
	completer conversation.Completer
	ordering  conversation.Ordering

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewService bootstraps the in-memory session registry. A nil completer makes
// every turn fall back.
func NewService(personas persona.Store, completer conversation.Completer, ordering conversation.Ordering) *Service {
	return &Service{
		personas:  personas,
		completer: completer,
		ordering:  ordering,
		sessions:  make(map[string]*sessionEntry),
	}
}

// CreateSession provisions an anonymous session bound to a persona.
func (s *Service) CreateSession(_ context.Context, personaID string) (chat.Session, error) {
	if personaID == "" {
		return chat.Session{}, ErrPersonaRequired
	}

	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return chat.Session{}, ErrPersonaNotFound
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		PersonaID: personaID,
		CreatedAt: time.Now().UTC(),
	}

	controller := conversation.New(
		ai.BuildSystemPrompt(&p),
		p.Greeting,
		p.Fallback,
		s.completer,
		conversation.WithOrdering(s.ordering),
		conversation.WithAssistantLabel(p.Name),
	)

	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session, controller: controller}
	s.mu.Unlock()

	log.Printf("[chat] created session=%s persona=%s ordering=%s", session.ID, personaID, s.ordering)
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

// Controller returns the conversation controller of a session.
func (s *Service) Controller(_ context.Context, sessionID string) (*conversation.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry.controller, nil
}

// LoadTranscript returns the full transcript of a session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	controller, err := s.Controller(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return controller.Transcript(), nil
}

// DeleteSession tears a session down; its transcript is discarded.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	log.Printf("[chat] deleted session=%s", sessionID)
	return nil
}
