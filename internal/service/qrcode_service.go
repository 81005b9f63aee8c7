package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-ops-api/internal/dto"
	"github.com/noah-isme/staff-ops-api/internal/models"
	appErrors "github.com/noah-isme/staff-ops-api/pkg/errors"
)

type qrCodeStore interface {
	FindByDate(ctx context.Context, date string) (*models.QrCode, error)
	Insert(ctx context.Context, code *models.QrCode) error
	DeleteByDate(ctx context.Context, date string) (int64, error)
}

// QrCodeService issues and revokes daily attendance tokens.
type QrCodeService struct {
	repo      qrCodeStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewQrCodeService builds a QrCodeService.
func NewQrCodeService(repo qrCodeStore, validate *validator.Validate, logger *zap.Logger) *QrCodeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QrCodeService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// Issue creates the code for a calendar day. The existence check happens
// before the insert; the unique index on date catches the concurrent-issuer
// race the check alone cannot.
func (s *QrCodeService) Issue(ctx context.Context, req dto.IssueQrCodeRequest, actor *models.JWTClaims) (*models.QrCode, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid qr payload")
	}

	requested, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	today := s.now().Format(models.DateLayout)
	if requested.Format(models.DateLayout) < today {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be today or later")
	}

	existing, err := s.repo.FindByDate(ctx, req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing qr code")
	}
	if existing != nil {
		return nil, appErrors.ErrQRAlreadyExists
	}

	code := &models.QrCode{Date: req.Date, CreatedBy: &actor.UserID}
	if err := s.repo.Insert(ctx, code); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store qr code")
	}

	s.logger.Info("qr code issued",
		zap.String("date", code.Date),
		zap.String("qr_code_id", code.ID),
		zap.String("issued_by", actor.UserID))
	return code, nil
}

// Revoke deletes the code(s) for a date. Attendance logs referencing the
// code keep their rows.
func (s *QrCodeService) Revoke(ctx context.Context, date string) error {
	if !models.ValidDate(date) {
		return appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	affected, err := s.repo.DeleteByDate(ctx, date)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete qr code")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "no qr code exists for this date")
	}
	s.logger.Info("qr code revoked", zap.String("date", date))
	return nil
}

// CurrentFor returns the code for a date when one exists, with its encoded
// wire payload, so the client can decide whether generation is available.
func (s *QrCodeService) CurrentFor(ctx context.Context, date string) (*models.QrCode, []byte, error) {
	if !models.ValidDate(date) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	code, err := s.repo.FindByDate(ctx, date)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up qr code")
	}
	if code == nil {
		return nil, nil, nil
	}
	payload, err := models.EncodeQRPayload(*code)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode qr payload")
	}
	return code, payload, nil
}
