package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staff-ops-api/internal/models"
)

// AttendanceRepository handles persistence for scan events. Rows are
// append-only; nothing in the workflow mutates or deletes them.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Insert appends a scan event.
func (r *AttendanceRepository) Insert(ctx context.Context, log *models.AttendanceLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.CreatedAt = time.Now().UTC()
	query := `INSERT INTO attendance_logs (id, user_id, full_name, email, department, qr_code_id, qr_date, scanned_at, type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		log.ID, log.UserID, log.FullName, log.Email, log.Department,
		log.QrCodeID, log.QrDate, log.ScannedAt, log.Type, log.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert attendance log: %w", err)
	}
	return nil
}

// List returns scan events matching the filter along with a total count.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceLog, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.UserID != "" {
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.QrDate != "" {
		where = append(where, fmt.Sprintf("qr_date = $%d", len(args)+1))
		args = append(args, filter.QrDate)
	}
	if filter.Type != nil && filter.Type.Valid() {
		where = append(where, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, *filter.Type)
	}
	whereClause := strings.Join(where, " AND ")

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, user_id, full_name, email, department, qr_code_id, qr_date, scanned_at, type, created_at
FROM attendance_logs WHERE %s ORDER BY scanned_at %s LIMIT %d OFFSET %d`, whereClause, order, size, offset)

	var rows []models.AttendanceLog
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance logs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance_logs WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance logs: %w", err)
	}
	return rows, total, nil
}
