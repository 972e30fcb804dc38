package repository

import (
	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	User UserRepository
	Idea IdeaRepository
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		User: NewUserRepository(db),
		Idea: NewIdeaRepository(db),
	}
}
