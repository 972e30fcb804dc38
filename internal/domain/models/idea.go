package models

import (
	"time"

	"github.com/google/uuid"
)

type Idea struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Summary     string    `db:"summary" json:"summary"`
	Description string    `db:"description" json:"description"`
	Tags        []string  `db:"tags" json:"tags"`
	UserID      uuid.UUID `db:"user_id" json:"user"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
