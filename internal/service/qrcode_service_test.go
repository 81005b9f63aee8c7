package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-ops-api/internal/dto"
	"github.com/noah-isme/staff-ops-api/internal/models"
	appErrors "github.com/noah-isme/staff-ops-api/pkg/errors"
)

type mockQrRepo struct {
	byDate     map[string]*models.QrCode
	findErr    error
	insertErr  error
	deleteErr  error
	inserted   []*models.QrCode
	deleteRows int64
}

func newMockQrRepo() *mockQrRepo {
	return &mockQrRepo{byDate: make(map[string]*models.QrCode)}
}

func (m *mockQrRepo) FindByDate(ctx context.Context, date string) (*models.QrCode, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.byDate[date], nil
}

func (m *mockQrRepo) Insert(ctx context.Context, code *models.QrCode) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	m.byDate[code.Date] = code
	m.inserted = append(m.inserted, code)
	return nil
}

func (m *mockQrRepo) DeleteByDate(ctx context.Context, date string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	if m.deleteRows > 0 {
		delete(m.byDate, date)
	}
	return m.deleteRows, nil
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func qrServiceAt(repo *mockQrRepo, today string) *QrCodeService {
	svc := NewQrCodeService(repo, validator.New(), zap.NewNop())
	svc.now = func() time.Time {
		t, _ := time.Parse(models.DateLayout, today)
		return t
	}
	return svc
}

func TestQrCodeServiceIssue(t *testing.T) {
	repo := newMockQrRepo()
	svc := qrServiceAt(repo, "2025-03-10")

	code, err := svc.Issue(context.Background(), dto.IssueQrCodeRequest{Date: "2025-03-10"}, adminClaims())
	require.NoError(t, err)
	assert.NotEmpty(t, code.ID)
	assert.Equal(t, "2025-03-10", code.Date)
	require.NotNil(t, code.CreatedBy)
	assert.Equal(t, "admin-1", *code.CreatedBy)
}

func TestQrCodeServiceIssueTwiceSameDate(t *testing.T) {
	repo := newMockQrRepo()
	svc := qrServiceAt(repo, "2025-03-10")

	_, err := svc.Issue(context.Background(), dto.IssueQrCodeRequest{Date: "2025-03-10"}, adminClaims())
	require.NoError(t, err)

	_, err = svc.Issue(context.Background(), dto.IssueQrCodeRequest{Date: "2025-03-10"}, adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrQRAlreadyExists.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.inserted, 1)
}

func TestQrCodeServiceIssueRejectsPastDate(t *testing.T) {
	svc := qrServiceAt(newMockQrRepo(), "2025-03-10")

	_, err := svc.Issue(context.Background(), dto.IssueQrCodeRequest{Date: "2025-03-09"}, adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestQrCodeServiceIssueRejectsMalformedDate(t *testing.T) {
	svc := qrServiceAt(newMockQrRepo(), "2025-03-10")

	_, err := svc.Issue(context.Background(), dto.IssueQrCodeRequest{Date: "10/03/2025"}, adminClaims())
	require.Error(t, err)
}

func TestQrCodeServiceRevokeMissing(t *testing.T) {
	svc := qrServiceAt(newMockQrRepo(), "2025-03-10")

	err := svc.Revoke(context.Background(), "2025-03-10")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestQrCodeServiceRevoke(t *testing.T) {
	repo := newMockQrRepo()
	repo.byDate["2025-03-10"] = &models.QrCode{ID: "qr-1", Date: "2025-03-10"}
	repo.deleteRows = 1
	svc := qrServiceAt(repo, "2025-03-10")

	require.NoError(t, svc.Revoke(context.Background(), "2025-03-10"))
	assert.Empty(t, repo.byDate)
}

func TestQrCodeServiceCurrentFor(t *testing.T) {
	repo := newMockQrRepo()
	repo.byDate["2025-03-10"] = &models.QrCode{ID: "qr-1", Date: "2025-03-10"}
	svc := qrServiceAt(repo, "2025-03-10")

	code, payload, err := svc.CurrentFor(context.Background(), "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, code)

	var decoded models.QRPayload
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "qr-1", decoded.ID)
	assert.Equal(t, "2025-03-10", decoded.Date)
}

func TestQrCodeServiceCurrentForAbsent(t *testing.T) {
	svc := qrServiceAt(newMockQrRepo(), "2025-03-10")

	code, payload, err := svc.CurrentFor(context.Background(), "2025-03-11")
	require.NoError(t, err)
	assert.Nil(t, code)
	assert.Nil(t, payload)
}
