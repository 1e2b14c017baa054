package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutorhive/booking-api/internal/models"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type mockAuthUserRepo struct {
	users         map[string]models.User
	tokens        map[string]models.RefreshToken
	revoked       []string
	familiesWiped []string
}

func (m *mockAuthUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockAuthUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			clone := u
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockAuthUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.tokens == nil {
		m.tokens = make(map[string]models.RefreshToken)
	}
	m.tokens[token.Token] = *token
	return nil
}

func (m *mockAuthUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.tokens[token]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revoked = append(m.revoked, id)
	for k, t := range m.tokens {
		if t.ID == id {
			t.Revoked = true
			m.tokens[k] = t
		}
	}
	return nil
}

func (m *mockAuthUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.familiesWiped = append(m.familiesWiped, userID)
	return nil
}

func authConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "booking-api",
	}
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLogin(t *testing.T) {
	repo := &mockAuthUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Email: "tutor@example.com", PasswordHash: hashPassword(t, "secret"),
			FullName: "Tutor One", Role: models.RoleTutor, Active: true},
	}}
	svc := NewAuthService(repo, nil, nil, authConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "tutor@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleTutor, resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleTutor, claims.Role)
}

func TestAuthServiceRegister(t *testing.T) {
	repo := &mockAuthUserRepo{}
	svc := NewAuthService(repo, nil, nil, authConfig())

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "new@example.com", Password: "longenough", FullName: "New Student", Role: "STUDENT",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, models.RoleStudent, info.Role)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "new@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := &mockAuthUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Email: "taken@example.com", Active: true},
	}}
	svc := NewAuthService(repo, nil, nil, authConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "taken@example.com", Password: "longenough", FullName: "Dup", Role: "TUTOR",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterRejectsAdminRole(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepo{}, nil, nil, authConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "boss@example.com", Password: "longenough", FullName: "Boss", Role: "ADMIN",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRejectsWrongPassword(t *testing.T) {
	repo := &mockAuthUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Email: "tutor@example.com", PasswordHash: hashPassword(t, "secret"), Active: true},
	}}
	svc := NewAuthService(repo, nil, nil, authConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "tutor@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	repo := &mockAuthUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Email: "tutor@example.com", PasswordHash: hashPassword(t, "secret"), Active: false},
	}}
	svc := NewAuthService(repo, nil, nil, authConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "tutor@example.com", Password: "secret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := &mockAuthUserRepo{
		users: map[string]models.User{
			"u1": {ID: "u1", Email: "student@example.com", Role: models.RoleStudent, Active: true},
		},
		tokens: map[string]models.RefreshToken{
			"old-token": {ID: "rt1", UserID: "u1", Token: "old-token", ExpiresAt: time.Now().UTC().Add(time.Hour)},
		},
	}
	svc := NewAuthService(repo, nil, nil, authConfig())

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.Contains(t, repo.revoked, "rt1")
}

func TestAuthServiceRefreshReplayRevokesFamily(t *testing.T) {
	repo := &mockAuthUserRepo{
		users: map[string]models.User{
			"u1": {ID: "u1", Email: "student@example.com", Role: models.RoleStudent, Active: true},
		},
		tokens: map[string]models.RefreshToken{
			"old-token": {ID: "rt1", UserID: "u1", Token: "old-token", ExpiresAt: time.Now().UTC().Add(time.Hour)},
		},
	}
	svc := NewAuthService(repo, nil, nil, authConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)

	// Presenting the rotated token again must fail and wipe every token the
	// user holds.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	assert.Contains(t, repo.familiesWiped, "u1")
}

func TestAuthServiceRefreshRejectsExpiredToken(t *testing.T) {
	repo := &mockAuthUserRepo{
		users: map[string]models.User{"u1": {ID: "u1", Active: true}},
		tokens: map[string]models.RefreshToken{
			"stale": {ID: "rt1", UserID: "u1", Token: "stale", ExpiresAt: time.Now().UTC().Add(-time.Hour)},
		},
	}
	svc := NewAuthService(repo, nil, nil, authConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogout(t *testing.T) {
	repo := &mockAuthUserRepo{
		tokens: map[string]models.RefreshToken{
			"tok": {ID: "rt1", UserID: "u1", Token: "tok", ExpiresAt: time.Now().UTC().Add(time.Hour)},
		},
	}
	svc := NewAuthService(repo, nil, nil, authConfig())

	require.NoError(t, svc.Logout(context.Background(), "tok", "u1"))
	assert.Contains(t, repo.revoked, "rt1")

	err := svc.Logout(context.Background(), "tok", "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepo{}, nil, nil, authConfig())

	_, err := svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
