package repository

import (
	"context"

	"github.com/tidyhome/backend/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail backs the duplicate-email check at registration.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
	// Delete removes the user; task rows cascade at the schema level.
	Delete(ctx context.Context, id string) error
}
