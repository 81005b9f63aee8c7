package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staff-ops-api/internal/models"
)

// QrCodeRepository handles persistence for daily attendance tokens.
type QrCodeRepository struct {
	db *sqlx.DB
}

// NewQrCodeRepository constructs the repository.
func NewQrCodeRepository(db *sqlx.DB) *QrCodeRepository {
	return &QrCodeRepository{db: db}
}

// FindByDate returns the code for a calendar day, or nil when none exists.
func (r *QrCodeRepository) FindByDate(ctx context.Context, date string) (*models.QrCode, error) {
	var code models.QrCode
	query := `SELECT id, date, created_by, created_at FROM qr_codes WHERE date = $1 LIMIT 1`
	if err := r.db.GetContext(ctx, &code, query, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find qr code by date: %w", err)
	}
	return &code, nil
}

// Insert stores a new code. The unique index on date backs the service-level
// existence check, so a lost race surfaces as a constraint violation here
// instead of a second row.
func (r *QrCodeRepository) Insert(ctx context.Context, code *models.QrCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	code.CreatedAt = time.Now().UTC()
	query := `INSERT INTO qr_codes (id, date, created_by, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, code.ID, code.Date, code.CreatedBy, code.CreatedAt); err != nil {
		return fmt.Errorf("insert qr code: %w", err)
	}
	return nil
}

// DeleteByDate removes the code(s) for a day and reports how many rows went.
// Attendance logs keep their qr_code_id reference; history is not cascaded.
func (r *QrCodeRepository) DeleteByDate(ctx context.Context, date string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM qr_codes WHERE date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("delete qr code: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete qr code: %w", err)
	}
	return affected, nil
}
