package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-ops-api/internal/dto"
	"github.com/noah-isme/staff-ops-api/internal/models"
	appErrors "github.com/noah-isme/staff-ops-api/pkg/errors"
	"github.com/noah-isme/staff-ops-api/pkg/realtime"
)

type notificationStore interface {
	Insert(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
	UpsertPushToken(ctx context.Context, token *models.PushToken) error
}

type unreadCache interface {
	GetInt(ctx context.Context, key string) (int, bool, error)
	SetInt(ctx context.Context, key string, value int, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, userID, kind string, payload interface{}) error
	Subscribe(ctx context.Context, userID string) (*realtime.Subscription, error)
}

type pushEnqueuer interface {
	Enqueue(notification models.Notification)
}

// NotificationService persists per-user notifications and fans each one out
// to the realtime stream and the push relay. The database row is the source
// of truth; stream and push are best effort.
type NotificationService struct {
	repo      notificationStore
	cache     unreadCache
	publisher eventPublisher
	relay     pushEnqueuer
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService builds a NotificationService. publisher and relay
// may be nil, which disables the corresponding delivery channel.
func NewNotificationService(repo notificationStore, cache unreadCache, publisher eventPublisher, relay pushEnqueuer, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &NotificationService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		relay:     relay,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
	}
}

func unreadCacheKey(userID string) string {
	return "notifications:unread:" + userID
}

// dispatch stores the notification and triggers the secondary channels.
// Only the insert can fail the call.
func (s *NotificationService) dispatch(ctx context.Context, notification *models.Notification) error {
	if err := s.repo.Insert(ctx, notification); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store notification")
	}
	s.invalidateUnread(ctx, notification.UserID)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, notification.UserID, "notification", notification); err != nil {
			s.logger.Warn("realtime publish failed",
				zap.String("notification_id", notification.ID), zap.Error(err))
		}
	}
	if s.relay != nil {
		s.relay.Enqueue(*notification)
	}
	return nil
}

// NotifyLeaveDecided sends the requester exactly one notification whose type
// mirrors the decision outcome.
func (s *NotificationService) NotifyLeaveDecided(ctx context.Context, request models.LeaveRequest, outcome models.LeaveOutcome) error {
	kind := models.NotificationLeaveApproved
	title := "Leave request approved"
	message := fmt.Sprintf("Your %s request from %s to %s has been approved.",
		request.LeaveType, request.StartDate, request.EndDate)
	if outcome == models.LeaveOutcomeRejected {
		kind = models.NotificationLeaveRejected
		title = "Leave request rejected"
		message = fmt.Sprintf("Your %s request from %s to %s has been rejected.",
			request.LeaveType, request.StartDate, request.EndDate)
	}

	data, _ := json.Marshal(map[string]interface{}{
		"leave_request_id": request.ID,
		"leave_type":       request.LeaveType,
		"start_date":       request.StartDate,
		"end_date":         request.EndDate,
		"status":           string(outcome.Status()),
	})

	return s.dispatch(ctx, &models.Notification{
		UserID:  request.UserID,
		Type:    kind,
		Title:   title,
		Message: message,
		Data:    data,
	})
}

// NotifyAdminLeaveCreated fans an admin-created override out to both parties:
// the beneficiary learns their leave was granted, the substitute learns they
// were assigned to cover the course.
func (s *NotificationService) NotifyAdminLeaveCreated(ctx context.Context, request models.LeaveRequest) error {
	if request.ReplacedLecturer == nil {
		return appErrors.Clone(appErrors.ErrValidation, "admin leave request has no substitute")
	}
	courseCode := ""
	if request.CourseCode != nil {
		courseCode = *request.CourseCode
	}
	window := ""
	if request.StartTime != nil && request.EndTime != nil {
		window = fmt.Sprintf(" between %s and %s", *request.StartTime, *request.EndTime)
	}

	beneficiaryData, _ := json.Marshal(map[string]interface{}{
		"leave_request_id": request.ID,
		"course_code":      courseCode,
		"start_date":       request.StartDate,
		"end_date":         request.EndDate,
		"admin_issued":     true,
	})
	if err := s.dispatch(ctx, &models.Notification{
		UserID: request.UserID,
		Type:   models.NotificationLeaveApproved,
		Title:  "Leave granted",
		Message: fmt.Sprintf("An administrator granted you leave from %s to %s%s. A substitute will cover %s.",
			request.StartDate, request.EndDate, window, courseCode),
		Data: beneficiaryData,
	}); err != nil {
		return err
	}

	substituteData, _ := json.Marshal(map[string]interface{}{
		"leave_request_id": request.ID,
		"course_code":      courseCode,
		"start_date":       request.StartDate,
		"end_date":         request.EndDate,
		"covering_for":     request.UserID,
	})
	return s.dispatch(ctx, &models.Notification{
		UserID: *request.ReplacedLecturer,
		Type:   models.NotificationCourseAssignment,
		Title:  "Course assignment",
		Message: fmt.Sprintf("You have been assigned to cover %s from %s to %s%s.",
			courseCode, request.StartDate, request.EndDate, window),
		Data: substituteData,
	})
}

// Announce stores a free-form system notification for one user.
func (s *NotificationService) Announce(ctx context.Context, userID, title, message string) error {
	return s.dispatch(ctx, &models.Notification{
		UserID:  userID,
		Type:    models.NotificationSystem,
		Title:   title,
		Message: message,
	})
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) ([]models.Notification, int, error) {
	rows, total, err := s.repo.List(ctx, models.NotificationFilter{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return rows, total, nil
}

// UnreadCount returns the caller's unread total, served from cache when warm.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	key := unreadCacheKey(userID)
	if s.cache != nil {
		if count, ok, err := s.cache.GetInt(ctx, key); err != nil {
			s.logger.Warn("unread cache read failed", zap.Error(err))
		} else if ok {
			return count, nil
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread notifications")
	}
	if s.cache != nil {
		if err := s.cache.SetInt(ctx, key, count, s.cacheTTL); err != nil {
			s.logger.Warn("unread cache write failed", zap.Error(err))
		}
	}
	return count, nil
}

// MarkRead flips one of the caller's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

// MarkAllRead flips all of the caller's unread notifications.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

// Delete removes one of the caller's notifications.
func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

// RegisterPushToken stores or refreshes the caller's device address.
func (s *NotificationService) RegisterPushToken(ctx context.Context, userID string, req dto.RegisterPushTokenRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid push token payload")
	}
	token := &models.PushToken{
		UserID:    userID,
		PushToken: req.PushToken,
		Platform:  req.Platform,
	}
	if err := s.repo.UpsertPushToken(ctx, token); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register push token")
	}
	return nil
}

// Subscribe opens a live event feed for the caller. Each call gets a fresh
// subscription; the caller must Close it.
func (s *NotificationService) Subscribe(ctx context.Context, userID string) (*realtime.Subscription, error) {
	if s.publisher == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "realtime stream is not configured")
	}
	sub, err := s.publisher.Subscribe(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open notification stream")
	}
	return sub, nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, unreadCacheKey(userID)); err != nil {
		s.logger.Warn("unread cache invalidation failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}
