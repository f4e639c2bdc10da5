package chat

import "time"

// Session addresses one in-memory conversation bound to a persona.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
}
