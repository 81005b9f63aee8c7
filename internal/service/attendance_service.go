package service

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/staff-ops-api/internal/models"
	appErrors "github.com/noah-isme/staff-ops-api/pkg/errors"
	"github.com/noah-isme/staff-ops-api/pkg/export"
)

// scannedAtLayout is the wall-clock format written into scan rows. Local
// time is recorded deliberately so a store running in another timezone does
// not skew the visible check-in time.
const scannedAtLayout = "2006-01-02 15:04:05"

const (
	scanStateIdle int32 = iota
	scanStateProcessing
)

type attendanceStore interface {
	Insert(ctx context.Context, log *models.AttendanceLog) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceLog, int, error)
}

type snapshotReader interface {
	Snapshot(ctx context.Context, id string) (*models.ProfileSnapshot, error)
}

// AttendanceService records scan events. Each instance owns a scan state
// flag that moves idle -> processing -> idle; a scan arriving while another
// is processing is rejected rather than queued, which collapses the
// dozens-per-second reads a camera produces for one physical scan into a
// single log row.
type AttendanceService struct {
	repo      attendanceStore
	profiles  snapshotReader
	logger    *zap.Logger
	now       func() time.Time
	scanState atomic.Int32
}

// NewAttendanceService builds an AttendanceService.
func NewAttendanceService(repo attendanceStore, profiles snapshotReader, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, profiles: profiles, logger: logger, now: time.Now}
}

// RecordScan consumes a scanned payload and appends one attendance log row.
// A payload that is not the JSON object shape degrades to a bare-date row
// instead of being dropped.
func (s *AttendanceService) RecordScan(ctx context.Context, actingUserID, rawPayload string, direction models.ScanDirection) (*models.AttendanceLog, error) {
	if !direction.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "direction must be check-in or check-out")
	}
	if rawPayload == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payload is required")
	}

	if !s.scanState.CompareAndSwap(scanStateIdle, scanStateProcessing) {
		return nil, appErrors.ErrScanInProgress
	}
	defer s.scanState.Store(scanStateIdle)

	payload := models.ParseQRPayload(rawPayload)

	snapshot, err := s.profiles.Snapshot(ctx, actingUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile snapshot")
	}

	var qrCodeID *string
	if payload.ID != "" {
		id := payload.ID
		qrCodeID = &id
	}

	log := &models.AttendanceLog{
		UserID:     actingUserID,
		FullName:   snapshot.FullName,
		Email:      snapshot.Email,
		Department: snapshot.Department,
		QrCodeID:   qrCodeID,
		QrDate:     payload.Date,
		ScannedAt:  s.now().Format(scannedAtLayout),
		Type:       direction,
	}
	if err := s.repo.Insert(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance log")
	}

	s.logger.Info("attendance recorded",
		zap.String("user_id", actingUserID),
		zap.String("qr_date", log.QrDate),
		zap.String("type", string(direction)))
	return log, nil
}

// List returns attendance rows. Staff see only their own; admins may scope
// to any user or none.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter, claims *models.JWTClaims) ([]models.AttendanceLog, int, error) {
	if claims == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	switch claims.Role {
	case models.RoleAdmin:
	case models.RoleStaff:
		filter.UserID = claims.UserID
	default:
		return nil, 0, appErrors.ErrForbidden
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance logs")
	}
	return rows, total, nil
}

// Export renders an attendance listing as CSV or PDF for admins.
func (s *AttendanceService) Export(ctx context.Context, filter models.AttendanceFilter, format string, claims *models.JWTClaims) ([]byte, string, error) {
	if claims == nil {
		return nil, "", appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAdmin {
		return nil, "", appErrors.ErrForbidden
	}

	filter.Page = 1
	filter.PageSize = 200
	rows, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance logs")
	}

	table := export.Table{
		Title:   "Attendance log",
		Columns: []string{"Name", "Email", "Department", "QR Date", "Scanned At", "Type"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, map[string]string{
			"Name":       row.FullName,
			"Email":      row.Email,
			"Department": row.Department,
			"QR Date":    row.QrDate,
			"Scanned At": row.ScannedAt,
			"Type":       string(row.Type),
		})
	}

	switch format {
	case "csv":
		out, err := export.RenderCSV(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return out, "text/csv", nil
	case "pdf":
		out, err := export.RenderPDF(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return out, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
