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

func leaveRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "leave_type", "reason", "start_date", "end_date",
		"start_time", "end_time", "status", "is_created_by_admin", "created_by",
		"replaced_lecturer", "course_code", "created_at", "updated_at",
	})
}

func TestLeaveRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLeaveRepository(db)
	mock.ExpectExec("INSERT INTO leave_requests").
		WithArgs(sqlmock.AnyArg(), "user-1", "annual", "family visit",
			"2025-07-10", "2025-07-12", nil, nil, models.LeaveStatusPending,
			false, nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.LeaveRequest{
		UserID:    "user-1",
		LeaveType: "annual",
		Reason:    "family visit",
		StartDate: "2025-07-10",
		EndDate:   "2025-07-12",
		Status:    models.LeaveStatusPending,
	}
	require.NoError(t, repo.Insert(context.Background(), request))
	assert.NotEmpty(t, request.ID)
}

func TestLeaveRepositoryUpdateStatusIfPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLeaveRepository(db)
	rows := leaveRows().AddRow(
		"leave-1", "user-1", "annual", "family visit", "2025-07-10", "2025-07-12",
		nil, nil, "rejected", false, nil, nil, nil, time.Now(), time.Now(),
	)
	mock.ExpectQuery("UPDATE leave_requests SET status").
		WithArgs("leave-1", models.LeaveStatusRejected, sqlmock.AnyArg()).
		WillReturnRows(rows)

	request, err := repo.UpdateStatusIfPending(context.Background(), "leave-1", models.LeaveStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusRejected, request.Status)
}

func TestLeaveRepositoryUpdateStatusIfPendingAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLeaveRepository(db)
	mock.ExpectQuery("UPDATE leave_requests SET status").
		WithArgs("leave-1", models.LeaveStatusApproved, sqlmock.AnyArg()).
		WillReturnRows(leaveRows())

	_, err := repo.UpdateStatusIfPending(context.Background(), "leave-1", models.LeaveStatusApproved)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLeaveRepositoryListPendingNewestFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLeaveRepository(db)
	detailRows := sqlmock.NewRows([]string{
		"id", "user_id", "leave_type", "reason", "start_date", "end_date",
		"start_time", "end_time", "status", "is_created_by_admin", "created_by",
		"replaced_lecturer", "course_code", "created_at", "updated_at",
		"requester_name", "requester_email", "requester_department",
		"substitute_name", "substitute_department",
	}).AddRow(
		"leave-2", "user-1", "annual", "rest", "2025-08-01", "2025-08-02",
		nil, nil, "pending", false, nil, nil, nil, time.Now(), time.Now(),
		"Ada Lovelace", "ada@example.com", "Engineering", nil, nil,
	)
	mock.ExpectQuery("SELECT lr.id, lr.user_id").
		WithArgs(models.LeaveStatusPending).
		WillReturnRows(detailRows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(models.LeaveStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	status := models.LeaveStatusPending
	rows, total, err := repo.List(context.Background(), models.LeaveFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ada Lovelace", rows[0].RequesterName)
}
