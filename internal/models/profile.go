package models

import "time"

// Role represents the closed set of application roles. Routing and RBAC
// switch on this enum exhaustively instead of comparing raw strings.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "user"
)

// Valid returns true when the role is a supported value.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff:
		return true
	default:
		return false
	}
}

// Profile represents a staff member or administrator.
type Profile struct {
	ID              string     `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	FullName        string     `db:"full_name" json:"full_name"`
	Role            Role       `db:"role" json:"role"`
	Department      string     `db:"department" json:"department"`
	Active          bool       `db:"active" json:"is_active"`
	PasswordChanged bool       `db:"password_changed" json:"password_changed"`
	LastLogin       *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// ProfileSnapshot is the point-in-time copy of profile fields denormalized
// into attendance logs at scan time.
type ProfileSnapshot struct {
	FullName   string `db:"full_name" json:"full_name"`
	Email      string `db:"email" json:"email"`
	Department string `db:"department" json:"department"`
}

// ProfileFilter captures filtering criteria for listing profiles.
type ProfileFilter struct {
	Role      *Role
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
