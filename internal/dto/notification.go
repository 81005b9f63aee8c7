package dto

// RegisterPushTokenRequest upserts a device push address for the caller.
type RegisterPushTokenRequest struct {
	PushToken string `json:"push_token" validate:"required"`
	Platform  string `json:"platform" validate:"required,oneof=ios android web"`
}
