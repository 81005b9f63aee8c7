package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/staff-ops-api/internal/dto"
	"github.com/noah-isme/staff-ops-api/internal/models"
	appErrors "github.com/noah-isme/staff-ops-api/pkg/errors"
)

type mockProfileRepo struct {
	byEmail   map[string]*models.Profile
	byID      map[string]*models.Profile
	created   []*models.Profile
	setActive map[string]bool
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{
		byEmail:   make(map[string]*models.Profile),
		byID:      make(map[string]*models.Profile),
		setActive: make(map[string]bool),
	}
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	profile, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return profile, nil
}

func (m *mockProfileRepo) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	profile, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return profile, nil
}

func (m *mockProfileRepo) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	var rows []models.Profile
	for _, p := range m.byID {
		rows = append(rows, *p)
	}
	return rows, len(rows), nil
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	m.byID[profile.ID] = profile
	m.byEmail[profile.Email] = profile
	m.created = append(m.created, profile)
	return nil
}

func (m *mockProfileRepo) SetActive(ctx context.Context, id string, active bool) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	m.setActive[id] = active
	return nil
}

func (m *mockProfileRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func validCreateProfile() dto.CreateProfileRequest {
	return dto.CreateProfileRequest{
		Email:      "new@example.com",
		FullName:   "New Staff",
		Department: "Engineering",
		Role:       "user",
		Password:   "initial-pass",
	}
}

func TestProfileServiceCreate(t *testing.T) {
	repo := newMockProfileRepo()
	svc := NewProfileService(repo, validator.New(), zap.NewNop())

	profile, err := svc.Create(context.Background(), validCreateProfile())
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", profile.Email)
	assert.Equal(t, models.RoleStaff, profile.Role)
	assert.True(t, profile.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte("initial-pass")))
}

func TestProfileServiceCreateNormalisesEmail(t *testing.T) {
	repo := newMockProfileRepo()
	svc := NewProfileService(repo, validator.New(), zap.NewNop())

	req := validCreateProfile()
	req.Email = "  New@Example.COM "
	profile, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", profile.Email)
}

func TestProfileServiceCreateDuplicateEmail(t *testing.T) {
	repo := newMockProfileRepo()
	repo.byEmail["new@example.com"] = &models.Profile{ID: "u-1", Email: "new@example.com"}
	svc := NewProfileService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validCreateProfile())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestProfileServiceSetActive(t *testing.T) {
	repo := newMockProfileRepo()
	repo.byID["u-1"] = &models.Profile{ID: "u-1"}
	svc := NewProfileService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.SetActive(context.Background(), "u-1", false))
	assert.False(t, repo.setActive["u-1"])
}

func TestProfileServiceSetActiveMissing(t *testing.T) {
	svc := NewProfileService(newMockProfileRepo(), validator.New(), zap.NewNop())

	err := svc.SetActive(context.Background(), "missing", true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceDeleteMissing(t *testing.T) {
	svc := NewProfileService(newMockProfileRepo(), validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
