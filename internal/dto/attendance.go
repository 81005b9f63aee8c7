package dto

// RecordScanRequest carries a raw scanned payload and a direction. The
// payload is passed through untouched so the parser can apply its bare-date
// fallback.
type RecordScanRequest struct {
	Payload   string `json:"payload" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=check-in check-out"`
}
