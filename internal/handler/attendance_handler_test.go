package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-ops-api/internal/middleware"
	"github.com/noah-isme/staff-ops-api/internal/models"
	"github.com/noah-isme/staff-ops-api/internal/service"
)

type responseEnvelope struct {
	Data       interface{}            `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type fakeAttendanceRepo struct {
	inserted []*models.AttendanceLog
	rows     []models.AttendanceLog
	total    int
}

func (f *fakeAttendanceRepo) Insert(ctx context.Context, log *models.AttendanceLog) error {
	f.inserted = append(f.inserted, log)
	return nil
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceLog, int, error) {
	return f.rows, f.total, nil
}

type fakeSnapshots struct{}

func (fakeSnapshots) Snapshot(ctx context.Context, id string) (*models.ProfileSnapshot, error) {
	return &models.ProfileSnapshot{FullName: "Staff Member", Email: "staff@example.com", Department: "Engineering"}, nil
}

func newAttendanceTestHandler(repo *fakeAttendanceRepo) *AttendanceHandler {
	svc := service.NewAttendanceService(repo, fakeSnapshots{}, zap.NewNop())
	return NewAttendanceHandler(svc, nil)
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAttendanceHandlerRecordScan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAttendanceRepo{}
	handler := newAttendanceTestHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/attendance/scan", gin.H{
		"payload":   `{"id":"qr-1","date":"2025-03-10"}`,
		"direction": "check-in",
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleStaff})

	handler.RecordScan(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "2025-03-10", repo.inserted[0].QrDate)
}

func TestAttendanceHandlerRecordScanMissingClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAttendanceTestHandler(&fakeAttendanceRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/attendance/scan", gin.H{
		"payload": "2025-03-10", "direction": "check-in",
	})

	handler.RecordScan(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAttendanceHandlerRecordScanBadDirection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAttendanceTestHandler(&fakeAttendanceRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/attendance/scan", gin.H{
		"payload": "2025-03-10", "direction": "sideways",
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleStaff})

	handler.RecordScan(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAttendanceRepo{rows: []models.AttendanceLog{{ID: "log-1", UserID: "u-1"}}, total: 1}
	handler := newAttendanceTestHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendance?page=1&limit=10", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleStaff})

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.EqualValues(t, 1, envelope.Pagination["total_count"])
}
