// Package suite wires real services against in-memory repositories so the
// full auth and idea flows can run without a database.
package suite

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"ideadrop/internal/domain/models"
	"ideadrop/internal/lib/jwt"
	authsvc "ideadrop/internal/services/auth_service"
	ideasvc "ideadrop/internal/services/idea_service"
	"ideadrop/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	Secret          = "e2e-test-secret"
	AccessTokenTTL  = time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour
)

type Suite struct {
	*testing.T
	Codec *jwt.Codec
	Auth  *authsvc.AuthService
	Ideas *ideasvc.IdeaService
	Users *MemUserRepo
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()
	t.Parallel()

	codec, err := jwt.NewCodec(Secret)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := NewMemUserRepo()
	ideas := NewMemIdeaRepo()

	ctx, cancelCtx := context.WithTimeout(context.Background(), time.Hour)

	t.Cleanup(func() {
		t.Helper()
		cancelCtx()
	})

	return ctx, &Suite{
		T:     t,
		Codec: codec,
		Auth:  authsvc.NewAuthService(log, users, codec, AccessTokenTTL, RefreshTokenTTL),
		Ideas: ideasvc.NewIdeaService(log, ideas),
		Users: users,
	}
}

type MemUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewMemUserRepo() *MemUserRepo {
	return &MemUserRepo{users: make(map[uuid.UUID]models.User)}
}

func (r *MemUserRepo) SaveUser(_ context.Context, user models.User) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return uuid.Nil, storage.ErrUserExists
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	r.users[user.ID] = user

	return user.ID, nil
}

func (r *MemUserRepo) UserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (r *MemUserRepo) UserByID(_ context.Context, userID uuid.UUID) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return user, nil
}

// Delete removes a user directly, for orphaned-token scenarios.
func (r *MemUserRepo) Delete(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, userID)
}

type MemIdeaRepo struct {
	mu    sync.RWMutex
	ideas map[uuid.UUID]models.Idea
}

func NewMemIdeaRepo() *MemIdeaRepo {
	return &MemIdeaRepo{ideas: make(map[uuid.UUID]models.Idea)}
}

func (r *MemIdeaRepo) SaveIdea(_ context.Context, idea models.Idea) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idea.ID = uuid.New()
	idea.CreatedAt = time.Now().UTC()
	idea.UpdatedAt = idea.CreatedAt
	r.ideas[idea.ID] = idea

	return idea.ID, nil
}

func (r *MemIdeaRepo) IdeaByID(_ context.Context, ideaID uuid.UUID) (models.Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idea, ok := r.ideas[ideaID]
	if !ok {
		return models.Idea{}, storage.ErrIdeaNotFound
	}

	return idea, nil
}

func (r *MemIdeaRepo) ListIdeas(_ context.Context, limit int, tags []string) ([]models.Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ideas := make([]models.Idea, 0, len(r.ideas))
	for _, idea := range r.ideas {
		if len(tags) > 0 && !overlaps(idea.Tags, tags) {
			continue
		}

		ideas = append(ideas, idea)
	}

	sort.Slice(ideas, func(i, j int) bool {
		return ideas[i].CreatedAt.After(ideas[j].CreatedAt)
	})

	if limit > 0 && len(ideas) > limit {
		ideas = ideas[:limit]
	}

	return ideas, nil
}

func (r *MemIdeaRepo) UpdateIdea(_ context.Context, idea models.Idea) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.ideas[idea.ID]
	if !ok {
		return storage.ErrIdeaNotFound
	}

	idea.UserID = existing.UserID
	idea.CreatedAt = existing.CreatedAt
	idea.UpdatedAt = time.Now().UTC()
	r.ideas[idea.ID] = idea

	return nil
}

func (r *MemIdeaRepo) DeleteIdea(_ context.Context, ideaID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ideas[ideaID]; !ok {
		return storage.ErrIdeaNotFound
	}

	delete(r.ideas, ideaID)

	return nil
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}

	return false
}
