package dto

// IssueQrCodeRequest asks for a new attendance token on a calendar day.
type IssueQrCodeRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}
