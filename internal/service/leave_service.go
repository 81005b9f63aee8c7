package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-ops-api/internal/dto"
	"github.com/noah-isme/staff-ops-api/internal/models"
	appErrors "github.com/noah-isme/staff-ops-api/pkg/errors"
)

type leaveStore interface {
	Insert(ctx context.Context, request *models.LeaveRequest) error
	FindByID(ctx context.Context, id string) (*models.LeaveRequest, error)
	UpdateStatusIfPending(ctx context.Context, id string, status models.LeaveStatus) (*models.LeaveRequest, error)
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequestDetail, int, error)
}

type leaveProfileReader interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

type leaveNotifier interface {
	NotifyLeaveDecided(ctx context.Context, request models.LeaveRequest, outcome models.LeaveOutcome) error
	NotifyAdminLeaveCreated(ctx context.Context, request models.LeaveRequest) error
}

// LeaveService owns the leave request lifecycle: pending on staff
// submission, approved at creation for admin overrides, and a single-shot
// decision into a terminal state.
type LeaveService struct {
	repo      leaveStore
	profiles  leaveProfileReader
	notifier  leaveNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeaveService builds a LeaveService.
func NewLeaveService(repo leaveStore, profiles leaveProfileReader, notifier leaveNotifier, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveService{repo: repo, profiles: profiles, notifier: notifier, validator: validate, logger: logger}
}

// Submit files a staff member's own leave request. It always starts pending.
func (s *LeaveService) Submit(ctx context.Context, userID string, req dto.SubmitLeaveRequest) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}
	if req.EndDate < req.StartDate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not precede start date")
	}

	request := &models.LeaveRequest{
		UserID:    userID,
		LeaveType: req.LeaveType,
		Reason:    req.Reason,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    models.LeaveStatusPending,
	}
	if err := s.repo.Insert(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store leave request")
	}

	s.logger.Info("leave request submitted",
		zap.String("leave_request_id", request.ID),
		zap.String("user_id", userID))
	return request, nil
}

// SubmitAsAdmin creates a pre-approved schedule override with a designated
// substitute. There is no pending phase; the two creation notifications fan
// out as part of the same operation.
func (s *LeaveService) SubmitAsAdmin(ctx context.Context, adminID string, req dto.AdminLeaveRequest) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}
	if req.ReplacedLecturer == req.UserID {
		return nil, appErrors.ErrInvalidSubstitute
	}
	if req.EndDate < req.StartDate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not precede start date")
	}
	startTime, err := parseClock(req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start time must be HH:MM")
	}
	endTime, err := parseClock(req.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be HH:MM")
	}

	if err := s.ensureProfile(ctx, req.UserID, "beneficiary"); err != nil {
		return nil, err
	}
	if err := s.ensureProfile(ctx, req.ReplacedLecturer, "substitute"); err != nil {
		return nil, err
	}

	request := &models.LeaveRequest{
		UserID:           req.UserID,
		LeaveType:        "course_substitution",
		Reason:           req.Reason,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		StartTime:        &startTime,
		EndTime:          &endTime,
		Status:           models.LeaveStatusApproved,
		IsCreatedByAdmin: true,
		CreatedBy:        &adminID,
		ReplacedLecturer: &req.ReplacedLecturer,
		CourseCode:       &req.CourseCode,
	}
	if err := s.repo.Insert(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store leave request")
	}

	if err := s.notifier.NotifyAdminLeaveCreated(ctx, *request); err != nil {
		// The request is already stored; a missing notification is an
		// accepted inconsistency, not a failure of the creation.
		s.logger.Warn("failed to notify admin leave creation",
			zap.String("leave_request_id", request.ID), zap.Error(err))
	}

	s.logger.Info("admin leave request created",
		zap.String("leave_request_id", request.ID),
		zap.String("beneficiary", req.UserID),
		zap.String("substitute", req.ReplacedLecturer))
	return request, nil
}

// Decide moves a pending request into a terminal state. Requests already
// decided are rejected rather than overwritten.
func (s *LeaveService) Decide(ctx context.Context, requestID string, outcome models.LeaveOutcome) (*models.LeaveRequest, error) {
	if !outcome.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "outcome must be approved or rejected")
	}

	request, err := s.repo.UpdateStatusIfPending(ctx, requestID, outcome.Status())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, findErr := s.repo.FindByID(ctx, requestID); findErr != nil {
				if errors.Is(findErr, sql.ErrNoRows) {
					return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
				}
				return nil, appErrors.Wrap(findErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
			}
			return nil, appErrors.ErrAlreadyDecided
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update leave request")
	}

	if err := s.notifier.NotifyLeaveDecided(ctx, *request, outcome); err != nil {
		s.logger.Warn("failed to notify leave decision",
			zap.String("leave_request_id", request.ID), zap.Error(err))
	}

	s.logger.Info("leave request decided",
		zap.String("leave_request_id", request.ID),
		zap.String("outcome", string(outcome)))
	return request, nil
}

// PendingForAdmin lists pending requests, newest first.
func (s *LeaveService) PendingForAdmin(ctx context.Context, page, pageSize int) ([]models.LeaveRequestDetail, int, error) {
	status := models.LeaveStatusPending
	return s.list(ctx, models.LeaveFilter{Status: &status, Page: page, PageSize: pageSize})
}

// AllForAdmin lists every request.
func (s *LeaveService) AllForAdmin(ctx context.Context, page, pageSize int) ([]models.LeaveRequestDetail, int, error) {
	return s.list(ctx, models.LeaveFilter{Page: page, PageSize: pageSize})
}

// MineForUser lists the caller's own requests, including admin-created ones
// naming them as beneficiary.
func (s *LeaveService) MineForUser(ctx context.Context, userID string, page, pageSize int) ([]models.LeaveRequestDetail, int, error) {
	return s.list(ctx, models.LeaveFilter{UserID: userID, Page: page, PageSize: pageSize})
}

func (s *LeaveService) list(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequestDetail, int, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	return rows, total, nil
}

func (s *LeaveService) ensureProfile(ctx context.Context, id, label string) error {
	if _, err := s.profiles.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, label+" profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+label+" profile")
	}
	return nil
}

// parseClock normalises a time-of-day string to HH:MM, accepting an
// optional trailing seconds component.
func parseClock(value string) (string, error) {
	if t, err := time.Parse("15:04", value); err == nil {
		return t.Format("15:04"), nil
	}
	t, err := time.Parse("15:04:05", value)
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}
