package service

import (
	"context"
	"database/sql"
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
	"github.com/noah-isme/staff-ops-api/pkg/realtime"
)

type mockNotificationRepo struct {
	inserted    []*models.Notification
	insertErr   error
	unread      int
	countCalls  int
	markReadErr error
	tokens      map[string]*models.PushToken
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{tokens: make(map[string]*models.PushToken)}
}

func (m *mockNotificationRepo) Insert(ctx context.Context, notification *models.Notification) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	m.inserted = append(m.inserted, notification)
	return nil
}

func (m *mockNotificationRepo) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	var rows []models.Notification
	for _, n := range m.inserted {
		if n.UserID == filter.UserID {
			rows = append(rows, *n)
		}
	}
	return rows, len(rows), nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	m.countCalls++
	return m.unread, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	if m.markReadErr != nil {
		return m.markReadErr
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id, userID string) error {
	return nil
}

func (m *mockNotificationRepo) UpsertPushToken(ctx context.Context, token *models.PushToken) error {
	m.tokens[token.UserID] = token
	return nil
}

type mockUnreadCache struct {
	values  map[string]int
	deleted []string
}

func newMockUnreadCache() *mockUnreadCache {
	return &mockUnreadCache{values: make(map[string]int)}
}

func (m *mockUnreadCache) GetInt(ctx context.Context, key string) (int, bool, error) {
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *mockUnreadCache) SetInt(ctx context.Context, key string, value int, ttl time.Duration) error {
	m.values[key] = value
	return nil
}

func (m *mockUnreadCache) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type mockPublisher struct {
	published []string
}

func (m *mockPublisher) Publish(ctx context.Context, userID, kind string, payload interface{}) error {
	m.published = append(m.published, userID)
	return nil
}

func (m *mockPublisher) Subscribe(ctx context.Context, userID string) (*realtime.Subscription, error) {
	return nil, nil
}

type mockRelay struct {
	enqueued []models.Notification
}

func (m *mockRelay) Enqueue(notification models.Notification) {
	m.enqueued = append(m.enqueued, notification)
}

func newNotificationFixture() (*NotificationService, *mockNotificationRepo, *mockUnreadCache, *mockPublisher, *mockRelay) {
	repo := newMockNotificationRepo()
	cache := newMockUnreadCache()
	publisher := &mockPublisher{}
	relay := &mockRelay{}
	svc := NewNotificationService(repo, cache, publisher, relay, time.Minute, validator.New(), zap.NewNop())
	return svc, repo, cache, publisher, relay
}

func approvedLeave() models.LeaveRequest {
	substitute := "u-2"
	course := "CS101"
	start := "08:00"
	end := "10:00"
	return models.LeaveRequest{
		ID: "lr-1", UserID: "u-1", LeaveType: "course_substitution",
		StartDate: "2025-03-10", EndDate: "2025-03-12",
		StartTime: &start, EndTime: &end,
		Status:           models.LeaveStatusApproved,
		ReplacedLecturer: &substitute, CourseCode: &course,
	}
}

func TestNotificationServiceNotifyLeaveDecidedApproved(t *testing.T) {
	svc, repo, _, publisher, relay := newNotificationFixture()

	request := models.LeaveRequest{ID: "lr-1", UserID: "u-1", LeaveType: "annual", StartDate: "2025-03-10", EndDate: "2025-03-12"}
	require.NoError(t, svc.NotifyLeaveDecided(context.Background(), request, models.LeaveOutcomeApproved))

	require.Len(t, repo.inserted, 1)
	notification := repo.inserted[0]
	assert.Equal(t, "u-1", notification.UserID)
	assert.Equal(t, models.NotificationLeaveApproved, notification.Type)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(notification.Data, &data))
	assert.Equal(t, "lr-1", data["leave_request_id"])
	assert.Equal(t, "approved", data["status"])

	assert.Equal(t, []string{"u-1"}, publisher.published)
	require.Len(t, relay.enqueued, 1)
}

func TestNotificationServiceNotifyLeaveDecidedRejected(t *testing.T) {
	svc, repo, _, _, _ := newNotificationFixture()

	request := models.LeaveRequest{ID: "lr-1", UserID: "u-1", LeaveType: "annual", StartDate: "2025-03-10", EndDate: "2025-03-12"}
	require.NoError(t, svc.NotifyLeaveDecided(context.Background(), request, models.LeaveOutcomeRejected))

	require.Len(t, repo.inserted, 1)
	assert.Equal(t, models.NotificationLeaveRejected, repo.inserted[0].Type)
}

func TestNotificationServiceNotifyAdminLeaveCreatedFansOutToBothParties(t *testing.T) {
	svc, repo, _, publisher, relay := newNotificationFixture()

	require.NoError(t, svc.NotifyAdminLeaveCreated(context.Background(), approvedLeave()))

	require.Len(t, repo.inserted, 2)
	assert.Equal(t, "u-1", repo.inserted[0].UserID)
	assert.Equal(t, models.NotificationLeaveApproved, repo.inserted[0].Type)
	assert.Equal(t, "u-2", repo.inserted[1].UserID)
	assert.Equal(t, models.NotificationCourseAssignment, repo.inserted[1].Type)
	assert.Contains(t, repo.inserted[1].Message, "CS101")

	assert.Equal(t, []string{"u-1", "u-2"}, publisher.published)
	assert.Len(t, relay.enqueued, 2)
}

func TestNotificationServiceNotifyAdminLeaveCreatedRequiresSubstitute(t *testing.T) {
	svc, repo, _, _, _ := newNotificationFixture()

	request := approvedLeave()
	request.ReplacedLecturer = nil
	err := svc.NotifyAdminLeaveCreated(context.Background(), request)
	require.Error(t, err)
	assert.Empty(t, repo.inserted)
}

func TestNotificationServiceUnreadCountCaches(t *testing.T) {
	svc, repo, cache, _, _ := newNotificationFixture()
	repo.unread = 3

	count, err := svc.UnreadCount(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, repo.countCalls)

	count, err = svc.UnreadCount(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, repo.countCalls, "second read should come from cache")
	assert.Contains(t, cache.values, unreadCacheKey("u-1"))
}

func TestNotificationServiceMarkReadInvalidatesCache(t *testing.T) {
	svc, _, cache, _, _ := newNotificationFixture()
	cache.values[unreadCacheKey("u-1")] = 5

	require.NoError(t, svc.MarkRead(context.Background(), "n-1", "u-1"))
	assert.NotContains(t, cache.values, unreadCacheKey("u-1"))
}

func TestNotificationServiceMarkReadNotFound(t *testing.T) {
	svc, repo, _, _, _ := newNotificationFixture()
	repo.markReadErr = sql.ErrNoRows

	err := svc.MarkRead(context.Background(), "missing", "u-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestNotificationServiceDispatchInvalidatesCache(t *testing.T) {
	svc, _, cache, _, _ := newNotificationFixture()
	cache.values[unreadCacheKey("u-1")] = 2

	request := models.LeaveRequest{ID: "lr-1", UserID: "u-1", LeaveType: "annual", StartDate: "2025-03-10", EndDate: "2025-03-12"}
	require.NoError(t, svc.NotifyLeaveDecided(context.Background(), request, models.LeaveOutcomeApproved))
	assert.NotContains(t, cache.values, unreadCacheKey("u-1"))
}

func TestNotificationServiceRegisterPushToken(t *testing.T) {
	svc, repo, _, _, _ := newNotificationFixture()

	err := svc.RegisterPushToken(context.Background(), "u-1", dto.RegisterPushTokenRequest{
		PushToken: "ExponentPushToken[abc]", Platform: "ios",
	})
	require.NoError(t, err)
	require.Contains(t, repo.tokens, "u-1")
	assert.Equal(t, "ExponentPushToken[abc]", repo.tokens["u-1"].PushToken)
}

func TestNotificationServiceRegisterPushTokenRejectsUnknownPlatform(t *testing.T) {
	svc, _, _, _, _ := newNotificationFixture()

	err := svc.RegisterPushToken(context.Background(), "u-1", dto.RegisterPushTokenRequest{
		PushToken: "ExponentPushToken[abc]", Platform: "blackberry",
	})
	require.Error(t, err)
}
