package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ideadrop/internal/domain/models"
	"ideadrop/internal/lib/logger/sl"
	"ideadrop/internal/repository"
	"ideadrop/internal/storage"
	"ideadrop/internal/transport/http/dto"

	"github.com/google/uuid"
)

var (
	ErrIdeaNotFound   = errors.New("idea not found")
	ErrNotOwner       = errors.New("not the idea owner")
	ErrRequiredFields = errors.New("title, summary and description are required")
)

type IdeaService struct {
	log  *slog.Logger
	repo repository.IdeaRepository
}

func NewIdeaService(log *slog.Logger, repo repository.IdeaRepository) *IdeaService {
	return &IdeaService{log: log, repo: repo}
}

func (s *IdeaService) CreateIdea(ctx context.Context, ownerID uuid.UUID, req dto.IdeaInput) (*models.Idea, error) {
	const op = "idea_service.CreateIdea"

	log := s.log.With(
		slog.String("op", op),
		slog.String("owner_id", ownerID.String()),
	)

	if err := checkRequiredFields(req); err != nil {
		log.Warn("invalid idea payload", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.SaveIdea(ctx, models.Idea{
		Title:       strings.TrimSpace(req.Title),
		Summary:     strings.TrimSpace(req.Summary),
		Description: strings.TrimSpace(req.Description),
		Tags:        req.Tags,
		UserID:      ownerID,
	})
	if err != nil {
		log.Error("failed to save idea", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("idea created", slog.String("idea_id", id.String()))

	return s.ideaByID(ctx, op, id)
}

func (s *IdeaService) GetIdea(ctx context.Context, ideaID uuid.UUID) (*models.Idea, error) {
	const op = "idea_service.GetIdea"

	return s.ideaByID(ctx, op, ideaID)
}

func (s *IdeaService) ListIdeas(ctx context.Context, limit int, tags []string) ([]models.Idea, error) {
	const op = "idea_service.ListIdeas"

	ideas, err := s.repo.ListIdeas(ctx, limit, tags)
	if err != nil {
		s.log.Error("failed to list ideas", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ideas, nil
}

// UpdateIdea replaces the mutable fields of an idea. Only the owner may
// update; anyone else gets ErrNotOwner regardless of the payload.
func (s *IdeaService) UpdateIdea(ctx context.Context, ideaID, callerID uuid.UUID, req dto.IdeaInput) (*models.Idea, error) {
	const op = "idea_service.UpdateIdea"

	log := s.log.With(
		slog.String("op", op),
		slog.String("idea_id", ideaID.String()),
	)

	idea, err := s.repo.IdeaByID(ctx, ideaID)
	if err != nil {
		if errors.Is(err, storage.ErrIdeaNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrIdeaNotFound)
		}

		log.Error("failed to get idea", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if idea.UserID != callerID {
		log.Warn("update rejected, caller is not the owner",
			slog.String("caller_id", callerID.String()),
			slog.String("owner_id", idea.UserID.String()),
		)

		return nil, fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	if err := checkRequiredFields(req); err != nil {
		log.Warn("invalid idea payload", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	idea.Title = strings.TrimSpace(req.Title)
	idea.Summary = strings.TrimSpace(req.Summary)
	idea.Description = strings.TrimSpace(req.Description)
	idea.Tags = req.Tags

	if err := s.repo.UpdateIdea(ctx, idea); err != nil {
		log.Error("failed to update idea", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("idea updated")

	return s.ideaByID(ctx, op, ideaID)
}

func (s *IdeaService) DeleteIdea(ctx context.Context, ideaID, callerID uuid.UUID) error {
	const op = "idea_service.DeleteIdea"

	log := s.log.With(
		slog.String("op", op),
		slog.String("idea_id", ideaID.String()),
	)

	idea, err := s.repo.IdeaByID(ctx, ideaID)
	if err != nil {
		if errors.Is(err, storage.ErrIdeaNotFound) {
			return fmt.Errorf("%s: %w", op, ErrIdeaNotFound)
		}

		log.Error("failed to get idea", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	if idea.UserID != callerID {
		log.Warn("delete rejected, caller is not the owner",
			slog.String("caller_id", callerID.String()),
			slog.String("owner_id", idea.UserID.String()),
		)

		return fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	if err := s.repo.DeleteIdea(ctx, ideaID); err != nil {
		log.Error("failed to delete idea", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("idea deleted")

	return nil
}

func (s *IdeaService) ideaByID(ctx context.Context, op string, ideaID uuid.UUID) (*models.Idea, error) {
	idea, err := s.repo.IdeaByID(ctx, ideaID)
	if err != nil {
		if errors.Is(err, storage.ErrIdeaNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrIdeaNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &idea, nil
}

func checkRequiredFields(req dto.IdeaInput) error {
	if strings.TrimSpace(req.Title) == "" ||
		strings.TrimSpace(req.Summary) == "" ||
		strings.TrimSpace(req.Description) == "" {
		return ErrRequiredFields
	}

	return nil
}
