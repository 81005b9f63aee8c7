package models

import "time"

// LeaveStatus tracks the lifecycle of a leave request.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// Terminal reports whether the status can no longer change.
func (s LeaveStatus) Terminal() bool {
	return s == LeaveStatusApproved || s == LeaveStatusRejected
}

// LeaveOutcome is the decision an admin takes on a pending request.
type LeaveOutcome string

const (
	LeaveOutcomeApproved LeaveOutcome = "approved"
	LeaveOutcomeRejected LeaveOutcome = "rejected"
)

// Valid returns true when the outcome is a supported value.
func (o LeaveOutcome) Valid() bool {
	return o == LeaveOutcomeApproved || o == LeaveOutcomeRejected
}

// Status maps the outcome onto the resulting request status.
func (o LeaveOutcome) Status() LeaveStatus {
	if o == LeaveOutcomeApproved {
		return LeaveStatusApproved
	}
	return LeaveStatusRejected
}

// LeaveRequest represents a request for time off, or an administrator-issued
// schedule override carrying a substitute and course code.
type LeaveRequest struct {
	ID               string      `db:"id" json:"id"`
	UserID           string      `db:"user_id" json:"user_id"`
	LeaveType        string      `db:"leave_type" json:"leave_type"`
	Reason           string      `db:"reason" json:"reason"`
	StartDate        string      `db:"start_date" json:"start_date"`
	EndDate          string      `db:"end_date" json:"end_date"`
	StartTime        *string     `db:"start_time" json:"start_time,omitempty"`
	EndTime          *string     `db:"end_time" json:"end_time,omitempty"`
	Status           LeaveStatus `db:"status" json:"status"`
	IsCreatedByAdmin bool        `db:"is_created_by_admin" json:"is_created_by_admin"`
	CreatedBy        *string     `db:"created_by" json:"created_by,omitempty"`
	ReplacedLecturer *string     `db:"replaced_lecturer" json:"replaced_lecturer,omitempty"`
	CourseCode       *string     `db:"course_code" json:"course_code,omitempty"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}

// LeaveRequestDetail joins the requester's (and substitute's) profile onto
// the request for list views.
type LeaveRequestDetail struct {
	LeaveRequest
	RequesterName        string  `db:"requester_name" json:"requester_name"`
	RequesterEmail       string  `db:"requester_email" json:"requester_email"`
	RequesterDepartment  string  `db:"requester_department" json:"requester_department"`
	SubstituteName       *string `db:"substitute_name" json:"substitute_name,omitempty"`
	SubstituteDepartment *string `db:"substitute_department" json:"substitute_department,omitempty"`
}

// LeaveFilter scopes leave request listings.
type LeaveFilter struct {
	UserID   string
	Status   *LeaveStatus
	Page     int
	PageSize int
}
