package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-ops-api/internal/models"
)

func TestNotificationRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), "user-1", models.NotificationLeaveApproved,
			"Leave request approved", sqlmock.AnyArg(), sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	notification := &models.Notification{
		UserID:  "user-1",
		Type:    models.NotificationLeaveApproved,
		Title:   "Leave request approved",
		Message: "Your annual leave was approved.",
	}
	require.NoError(t, repo.Insert(context.Background(), notification))
	assert.NotEmpty(t, notification.ID)
}

func TestNotificationRepositoryCountUnread(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUnread(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestNotificationRepositoryMarkReadScopedToOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec("UPDATE notifications SET is_read").
		WithArgs("notif-1", "someone-else").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), "notif-1", "someone-else")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNotificationRepositoryUpsertPushToken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec("INSERT INTO user_push_tokens").
		WithArgs("user-1", "ExponentPushToken[abc]", "ios", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	token := &models.PushToken{UserID: "user-1", PushToken: "ExponentPushToken[abc]", Platform: "ios"}
	require.NoError(t, repo.UpsertPushToken(context.Background(), token))
	assert.WithinDuration(t, time.Now().UTC(), token.UpdatedAt, time.Minute)
}

func TestNotificationRepositoryFindPushTokenMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectQuery("SELECT user_id, push_token, platform, updated_at FROM user_push_tokens").
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "push_token", "platform", "updated_at"}))

	token, err := repo.FindPushToken(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Nil(t, token)
}
