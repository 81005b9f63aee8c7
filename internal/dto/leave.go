package dto

// SubmitLeaveRequest is a staff member's own leave submission.
type SubmitLeaveRequest struct {
	LeaveType string `json:"leave_type" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// AdminLeaveRequest creates a pre-approved schedule override naming a
// substitute for the covered course.
type AdminLeaveRequest struct {
	UserID           string `json:"user_id" validate:"required"`
	ReplacedLecturer string `json:"replaced_lecturer" validate:"required"`
	CourseCode       string `json:"course_code" validate:"required"`
	Reason           string `json:"reason" validate:"required"`
	StartDate        string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTime        string `json:"start_time" validate:"required"`
	EndTime          string `json:"end_time" validate:"required"`
}

// DecideLeaveRequest records an admin decision on a pending request.
type DecideLeaveRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=approved rejected"`
}
