package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-day format used across QR payloads, leave
// requests and attendance rows.
const DateLayout = "2006-01-02"

// QrCode represents a single day's attendance token. At most one code
// exists per calendar date.
type QrCode struct {
	ID        string    `db:"id" json:"id"`
	Date      string    `db:"date" json:"date"`
	CreatedBy *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// QRPayload is the wire format encoded into the 2D barcode.
type QRPayload struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

// EncodeQRPayload renders the payload shown to staff devices.
func EncodeQRPayload(code QrCode) ([]byte, error) {
	return json.Marshal(QRPayload{ID: code.ID, Date: code.Date})
}

// ParseQRPayload decodes a scanned payload. A raw string that is not the
// JSON object shape is treated as a bare date with no id, so legacy and
// hand-typed codes still record a log row.
func ParseQRPayload(raw string) QRPayload {
	var payload QRPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return QRPayload{Date: raw}
	}
	if payload.ID == "" && payload.Date == "" {
		return QRPayload{Date: raw}
	}
	return payload
}

// ValidDate reports whether value is a well-formed calendar day.
func ValidDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}
