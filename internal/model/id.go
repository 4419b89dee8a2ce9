package model

import "github.com/google/uuid"

// NewID returns a short random identifier for a document entity.
func NewID() string {
	return uuid.NewString()[:8]
}
