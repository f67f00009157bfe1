package core

import "github.com/google/uuid"

// NewID returns a random UUIDv4 string used for every client-created record.
func NewID() string {
	return uuid.NewString()
}
