package domain

import "time"

// Bot associates a chat scope with a set of indexed documents. The bot
// registry is read-only from this service's perspective.
type Bot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	DocumentIDs []string  `json:"document_ids"`
	CreatedAt   time.Time `json:"created_at"`
}
