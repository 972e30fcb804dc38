package repository

import (
	"context"

	"ideadrop/internal/domain/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (uuid.UUID, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
}

type IdeaRepository interface {
	SaveIdea(ctx context.Context, idea models.Idea) (uuid.UUID, error)
	IdeaByID(ctx context.Context, ideaID uuid.UUID) (models.Idea, error)
	ListIdeas(ctx context.Context, limit int, tags []string) ([]models.Idea, error)
	UpdateIdea(ctx context.Context, idea models.Idea) error
	DeleteIdea(ctx context.Context, ideaID uuid.UUID) error
}
