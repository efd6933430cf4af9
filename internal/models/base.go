package models

import "time"

// Base carries the identity and timestamps shared by every persisted record.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Meta exposes the embedded base to generic repository code.
func (b *Base) Meta() *Base { return b }
