package models

import "time"

// Notification is a fire-and-forget side record produced by grading events.
type Notification struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RecipientID  uint      `gorm:"not null;index" json:"recipient_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Message      string    `gorm:"type:text" json:"message"`
	Type         string    `gorm:"size:64" json:"type"`
	ClassID      *uint     `json:"class_id"`
	AssignmentID *uint     `json:"assignment_id"`
	Read         bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	// NotificationTypeGradeReceived is emitted when a submission is graded.
	NotificationTypeGradeReceived = "grade_received"
	// NotificationTypeCommentAdded is emitted when work is returned for revision.
	NotificationTypeCommentAdded = "comment_added"
)
