package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-ops-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestQrCodeRepositoryFindByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)
	rows := sqlmock.NewRows([]string{"id", "date", "created_by", "created_at"}).
		AddRow("qr-1", "2025-06-01", nil, time.Now())
	mock.ExpectQuery("SELECT id, date, created_by, created_at FROM qr_codes").
		WithArgs("2025-06-01").
		WillReturnRows(rows)

	code, err := repo.FindByDate(context.Background(), "2025-06-01")
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, "qr-1", code.ID)
	assert.Equal(t, "2025-06-01", code.Date)
}

func TestQrCodeRepositoryFindByDateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)
	mock.ExpectQuery("SELECT id, date, created_by, created_at FROM qr_codes").
		WithArgs("2025-06-02").
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "created_by", "created_at"}))

	code, err := repo.FindByDate(context.Background(), "2025-06-02")
	require.NoError(t, err)
	assert.Nil(t, code)
}

func TestQrCodeRepositoryInsertAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)
	mock.ExpectExec("INSERT INTO qr_codes").
		WithArgs(sqlmock.AnyArg(), "2025-06-01", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	code := &models.QrCode{Date: "2025-06-01"}
	require.NoError(t, repo.Insert(context.Background(), code))
	assert.NotEmpty(t, code.ID)
}

func TestQrCodeRepositoryDeleteByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)
	mock.ExpectExec("DELETE FROM qr_codes").
		WithArgs("2025-06-01").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.DeleteByDate(context.Background(), "2025-06-01")
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
}
