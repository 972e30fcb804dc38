package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ideadrop/internal/domain/models"
	"ideadrop/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

type IdeaRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewIdeaRepository(db *pgxpool.Pool) *IdeaRepo {
	return &IdeaRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *IdeaRepo) SaveIdea(ctx context.Context, idea models.Idea) (uuid.UUID, error) {
	const op = "repository.idea_repository.SaveIdea"

	// nil tags would land as SQL NULL in the text[] column
	if idea.Tags == nil {
		idea.Tags = []string{}
	}

	query, args, err := r.sb.Insert("ideas").
		Columns(
			"title",
			"summary",
			"description",
			"tags",
			"user_id",
		).
		Values(
			idea.Title,
			idea.Summary,
			idea.Description,
			idea.Tags,
			idea.UserID,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var id uuid.UUID
	err = r.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *IdeaRepo) IdeaByID(ctx context.Context, ideaID uuid.UUID) (models.Idea, error) {
	const op = "repository.idea_repository.IdeaByID"

	query, args, err := r.sb.
		Select("id", "title", "summary", "description", "tags", "user_id", "created_at", "updated_at").
		From("ideas").
		Where(sq.Eq{"id": ideaID}).
		ToSql()
	if err != nil {
		return models.Idea{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var idea models.Idea
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&idea.ID,
		&idea.Title,
		&idea.Summary,
		&idea.Description,
		&idea.Tags,
		&idea.UserID,
		&idea.CreatedAt,
		&idea.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Idea{}, fmt.Errorf("%s: %w", op, storage.ErrIdeaNotFound)
		}

		return models.Idea{}, fmt.Errorf("%s: %w", op, err)
	}

	return idea, nil
}

// ListIdeas returns ideas newest first. A non-positive limit means no limit,
// tags filter by overlap (any of the given tags).
func (r *IdeaRepo) ListIdeas(ctx context.Context, limit int, tags []string) ([]models.Idea, error) {
	const op = "repository.idea_repository.ListIdeas"

	builder := r.sb.
		Select("id", "title", "summary", "description", "tags", "user_id", "created_at", "updated_at").
		From("ideas").
		OrderBy("created_at DESC")

	if len(tags) > 0 {
		builder = builder.Where("tags && ?", pq.Array(tags))
	}

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	ideas := make([]models.Idea, 0)
	for rows.Next() {
		var idea models.Idea
		err = rows.Scan(
			&idea.ID,
			&idea.Title,
			&idea.Summary,
			&idea.Description,
			&idea.Tags,
			&idea.UserID,
			&idea.CreatedAt,
			&idea.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		ideas = append(ideas, idea)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ideas, nil
}

func (r *IdeaRepo) UpdateIdea(ctx context.Context, idea models.Idea) error {
	const op = "repository.idea_repository.UpdateIdea"

	if idea.Tags == nil {
		idea.Tags = []string{}
	}

	query, args, err := r.sb.Update("ideas").
		Set("title", idea.Title).
		Set("summary", idea.Summary).
		Set("description", idea.Description).
		Set("tags", idea.Tags).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": idea.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrIdeaNotFound)
	}

	return nil
}

func (r *IdeaRepo) DeleteIdea(ctx context.Context, ideaID uuid.UUID) error {
	const op = "repository.idea_repository.DeleteIdea"

	query, args, err := r.sb.Delete("ideas").
		Where(sq.Eq{"id": ideaID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrIdeaNotFound)
	}

	return nil
}
