package dto

// CreateProfileRequest provisions a staff account with a system-generated
// password the user is expected to rotate on first login.
type CreateProfileRequest struct {
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"required"`
	Department string `json:"department" validate:"required"`
	Role       string `json:"role" validate:"required,oneof=admin user"`
	Password   string `json:"password" validate:"required,min=6"`
}

// SetProfileActiveRequest toggles account activation.
type SetProfileActiveRequest struct {
	Active bool `json:"is_active"`
}
