package models

import (
	"encoding/json"
	"time"
)

// NotificationType classifies a notification message.
type NotificationType string

const (
	NotificationLeaveApproved      NotificationType = "leave_approved"
	NotificationLeaveRejected      NotificationType = "leave_rejected"
	NotificationCourseAssignment   NotificationType = "course_assignment"
	NotificationAttendanceReminder NotificationType = "attendance_reminder"
	NotificationSystem             NotificationType = "system_notification"
)

// Valid returns true when the type is a supported value.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLeaveApproved, NotificationLeaveRejected,
		NotificationCourseAssignment, NotificationAttendanceReminder,
		NotificationSystem:
		return true
	default:
		return false
	}
}

// Notification represents a message delivered to exactly one profile.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Data      json.RawMessage  `db:"data" json:"data,omitempty"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter scopes notification listings to the owning user.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}

// PushToken represents a device's push-delivery address for a profile.
// One row per user; registration upserts.
type PushToken struct {
	UserID    string    `db:"user_id" json:"user_id"`
	PushToken string    `db:"push_token" json:"push_token"`
	Platform  string    `db:"platform" json:"platform"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
