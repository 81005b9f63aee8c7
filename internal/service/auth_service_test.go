package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/staff-ops-api/internal/models"
	appErrors "github.com/noah-isme/staff-ops-api/pkg/errors"
)

type mockAuthRepo struct {
	profile           *models.Profile
	findByEmailErr    error
	findByIDErr       error
	updatePasswordErr error
	passwordUpdated   string
	lastLoginUpdated  bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.profile, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	return m.profile, nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	m.passwordUpdated = passwordHash
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{TokenSecret: "secret", TokenExpiry: time.Hour, Issuer: "staff-ops"}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{profile: &models.Profile{
		ID: "u-1", Email: "staff@example.com", PasswordHash: string(hash),
		FullName: "Staff Member", Role: models.RoleStaff, Active: true,
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "u-1", res.User.ID)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleStaff, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{profile: &models.Profile{
		ID: "u-1", Email: "staff@example.com", PasswordHash: string(hash), Active: true, Role: models.RoleStaff,
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := &mockAuthRepo{findByEmailErr: sql.ErrNoRows}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{profile: &models.Profile{
		ID: "u-1", Email: "staff@example.com", PasswordHash: string(hash), Active: false, Role: models.RoleStaff,
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, validator.New(), zap.NewNop(), testAuthConfig())
	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestAuthServiceChangePassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{profile: &models.Profile{ID: "u-1", PasswordHash: string(hash), Active: true, Role: models.RoleStaff}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u-1", models.ChangePasswordRequest{
		OldPassword: "old-pass", NewPassword: "new-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, repo.passwordUpdated)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordUpdated), []byte("new-pass")))
}

func TestAuthServiceChangePasswordWrongCurrent(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{profile: &models.Profile{ID: "u-1", PasswordHash: string(hash), Active: true, Role: models.RoleStaff}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u-1", models.ChangePasswordRequest{
		OldPassword: "nope", NewPassword: "new-pass",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.passwordUpdated)
}
