package service

import "github.com/google/uuid"

// Actor is the authenticated user a mutation is attributed to.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
}
