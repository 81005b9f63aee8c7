package models

import "time"

// ScanDirection distinguishes check-in from check-out scans.
type ScanDirection string

const (
	ScanCheckIn  ScanDirection = "check-in"
	ScanCheckOut ScanDirection = "check-out"
)

// Valid returns true when the direction is a supported value.
func (d ScanDirection) Valid() bool {
	switch d {
	case ScanCheckIn, ScanCheckOut:
		return true
	default:
		return false
	}
}

// AttendanceLog represents one scan event. Profile fields are a snapshot
// taken at scan time, not a live join. QrCodeID is nil when the payload was
// malformed or when the code has since been revoked.
type AttendanceLog struct {
	ID         string        `db:"id" json:"id"`
	UserID     string        `db:"user_id" json:"user_id"`
	FullName   string        `db:"full_name" json:"full_name"`
	Email      string        `db:"email" json:"email"`
	Department string        `db:"department" json:"department"`
	QrCodeID   *string       `db:"qr_code_id" json:"qr_code_id"`
	QrDate     string        `db:"qr_date" json:"qr_date"`
	ScannedAt  string        `db:"scanned_at" json:"scanned_at"`
	Type       ScanDirection `db:"type" json:"type"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// AttendanceFilter scopes attendance listing queries.
type AttendanceFilter struct {
	UserID    string
	QrDate    string
	Type      *ScanDirection
	Page      int
	PageSize  int
	SortOrder string
}
