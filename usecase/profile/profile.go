package profile

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tidyhome/backend/domain"
	"github.com/tidyhome/backend/repository"
)

// TaskSeeder creates the default chore catalog for a freshly registered user.
// Seeding is not idempotent, so Register is the only caller.
type TaskSeeder interface {
	SeedDefaults(ctx context.Context, ownerID string) ([]domain.Task, error)
}

type UseCase struct {
	users  repository.UserRepository
	seeder TaskSeeder
	logger *zap.Logger
}

func New(users repository.UserRepository, seeder TaskSeeder, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		seeder: seeder,
		logger: logger,
	}
}

// Register creates the account and seeds its starter tasks exactly once.
func (uc *UseCase) Register(ctx context.Context, email, name string) (*domain.User, error) {
	if email == "" {
		return nil, domain.Validationf("email is required")
	}

	if existing, err := uc.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	} else if err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, err
	}

	user := &domain.User{
		ID:     uuid.NewString(),
		Email:  email,
		Name:   name,
		Status: "active",
	}
	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	if uc.seeder != nil {
		if _, err := uc.seeder.SeedDefaults(ctx, user.ID); err != nil {
			// The account itself is usable; the starter list is a convenience.
			uc.logger.Error("default task seeding failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return user, nil
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

func (uc *UseCase) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user; owned tasks cascade at the schema level.
func (uc *UseCase) DeleteAccount(ctx context.Context, userID string) error {
	return uc.users.Delete(ctx, userID)
}
