package repository

import (
	"context"

	"github.com/tidyhome/backend/domain"
)

// SessionRepository stores login sessions. Implementations expire records on
// their own once ExpiresAt passes.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	// Extend moves the expiry ttlSeconds into the future, updating both the
	// stored record and its storage-level TTL.
	Extend(ctx context.Context, id string, ttlSeconds int) error
}
