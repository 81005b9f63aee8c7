package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staff-ops-api/internal/models"
)

// LeaveRepository handles persistence for leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = `id, user_id, leave_type, reason, start_date, end_date, start_time, end_time, status, is_created_by_admin, created_by, replaced_lecturer, course_code, created_at, updated_at`

const leaveDetailQuery = `SELECT lr.id, lr.user_id, lr.leave_type, lr.reason, lr.start_date, lr.end_date,
lr.start_time, lr.end_time, lr.status, lr.is_created_by_admin, lr.created_by,
lr.replaced_lecturer, lr.course_code, lr.created_at, lr.updated_at,
p.full_name AS requester_name, p.email AS requester_email, p.department AS requester_department,
sub.full_name AS substitute_name, sub.department AS substitute_department
FROM leave_requests lr
JOIN profiles p ON p.id = lr.user_id
LEFT JOIN profiles sub ON sub.id = lr.replaced_lecturer`

// Insert stores a new leave request.
func (r *LeaveRepository) Insert(ctx context.Context, request *models.LeaveRequest) error {
	now := time.Now().UTC()
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	request.CreatedAt = now
	request.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO leave_requests (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`, leaveColumns)
	if _, err := r.db.ExecContext(ctx, query,
		request.ID, request.UserID, request.LeaveType, request.Reason,
		request.StartDate, request.EndDate, request.StartTime, request.EndTime,
		request.Status, request.IsCreatedByAdmin, request.CreatedBy,
		request.ReplacedLecturer, request.CourseCode,
		request.CreatedAt, request.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert leave request: %w", err)
	}
	return nil
}

// FindByID returns a leave request by id.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	var request models.LeaveRequest
	query := fmt.Sprintf(`SELECT %s FROM leave_requests WHERE id = $1`, leaveColumns)
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// UpdateStatusIfPending transitions a pending request to its terminal state.
// The status guard makes the decision single-shot: a request already decided
// matches no row and sql.ErrNoRows is returned.
func (r *LeaveRepository) UpdateStatusIfPending(ctx context.Context, id string, status models.LeaveStatus) (*models.LeaveRequest, error) {
	query := fmt.Sprintf(`UPDATE leave_requests SET status = $2, updated_at = $3
WHERE id = $1 AND status = 'pending'
RETURNING %s`, leaveColumns)
	var request models.LeaveRequest
	if err := r.db.GetContext(ctx, &request, query, id, status, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update leave status: %w", err)
	}
	return &request, nil
}

// List returns leave requests with requester and substitute profiles joined.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequestDetail, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.UserID != "" {
		where = append(where, fmt.Sprintf("lr.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("lr.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`%s WHERE %s ORDER BY lr.created_at DESC LIMIT %d OFFSET %d`,
		leaveDetailQuery, whereClause, size, offset)

	var rows []models.LeaveRequestDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leave requests: %w", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM leave_requests lr WHERE %s`, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count leave requests: %w", err)
	}
	return rows, total, nil
}
