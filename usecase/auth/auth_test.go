package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidyhome/backend/domain"
)

type mockUserRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*domain.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}
func (m *mockUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}
func (m *mockUserRepo) Upsert(context.Context, *domain.User) error { return nil }
func (m *mockUserRepo) Delete(context.Context, string) error       { return nil }

type memSessionRepo struct {
	sessions map[string]*domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*domain.Session{}}
}

func (m *memSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	found := *session
	return &found, nil
}

func (m *memSessionRepo) Save(_ context.Context, session *domain.Session) error {
	stored := *session
	m.sessions[session.ID] = &stored
	return nil
}

func (m *memSessionRepo) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *memSessionRepo) Extend(_ context.Context, id string, ttlSeconds int) error {
	session, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	return nil
}

const testSecret = "test-secret"

func newTestUseCase(sessions *memSessionRepo) *UseCase {
	users := &mockUserRepo{
		getByIDFunc: func(_ context.Context, id string) (*domain.User, error) {
			if id == "u-1" {
				return &domain.User{ID: "u-1", Email: "alice@example.com"}, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
	return New(users, sessions, testSecret, "tidyhome", nil)
}

func parseClaims(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		require.IsType(t, &jwt.SigningMethodHMAC{}, token.Method)
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestLogin(t *testing.T) {
	sessions := newMemSessionRepo()
	uc := newTestUseCase(sessions)

	creds, err := uc.Login(context.Background(), "u-1", time.Hour)
	require.NoError(t, err)
	require.NotNil(t, creds.Session)
	assert.Equal(t, "u-1", creds.Session.UserID)
	assert.False(t, creds.Session.IsExpired(time.Now()))

	stored, err := sessions.Get(context.Background(), creds.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "u-1", stored.UserID)

	claims := parseClaims(t, creds.Token)
	assert.Equal(t, "u-1", claims["user_id"])
	assert.Equal(t, creds.Session.ID, claims["session_id"])
	assert.Equal(t, "tidyhome", claims["iss"])
}

func TestLoginUnknownUser(t *testing.T) {
	uc := newTestUseCase(newMemSessionRepo())

	_, err := uc.Login(context.Background(), "nobody", time.Hour)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestRefresh(t *testing.T) {
	sessions := newMemSessionRepo()
	uc := newTestUseCase(sessions)

	creds, err := uc.Login(context.Background(), "u-1", time.Hour)
	require.NoError(t, err)

	refreshed, err := uc.Refresh(context.Background(), creds.Session.ID, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, creds.Session.ID, refreshed.Session.ID)
	assert.True(t, refreshed.Session.ExpiresAt.After(creds.Session.ExpiresAt))

	claims := parseClaims(t, refreshed.Token)
	assert.Equal(t, "u-1", claims["user_id"])
}

func TestRefreshExpiredSession(t *testing.T) {
	sessions := newMemSessionRepo()
	uc := newTestUseCase(sessions)

	expired := &domain.Session{
		ID:        "s-expired",
		UserID:    "u-1",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, sessions.Save(context.Background(), expired))

	_, err := uc.Refresh(context.Background(), "s-expired", time.Hour)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	_, err = sessions.Get(context.Background(), "s-expired")
	require.Error(t, err, "expired session is purged on refresh")
}

func TestRevoke(t *testing.T) {
	sessions := newMemSessionRepo()
	uc := newTestUseCase(sessions)

	creds, err := uc.Login(context.Background(), "u-1", time.Hour)
	require.NoError(t, err)

	require.NoError(t, uc.Revoke(context.Background(), creds.Session.ID))

	_, err = sessions.Get(context.Background(), creds.Session.ID)
	require.Error(t, err)
}
