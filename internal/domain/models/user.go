package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Password  []byte    `db:"password" json:"-"`
	CreatedAt time.Time `db:"created_at,omitempty" json:"created_at,omitempty"`
}

// Identity is the caller resolved from a verified access token.
// Attached to the request context by the auth middleware, lives for
// the duration of that request only.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
