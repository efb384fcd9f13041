package models

import "time"

// Assignment represents graded work posted to a class by its teacher.
type Assignment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ClassID     uint       `gorm:"not null;index" json:"class_id"`
	TeacherID   uint       `gorm:"not null" json:"teacher_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Type        string     `gorm:"size:32;not null;default:assignment" json:"type"`
	DueDate     *time.Time `json:"due_date"`
	MaxPoints   *float64   `json:"max_points"`
	Published   bool       `gorm:"not null;default:false" json:"published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Class       Class      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"class"`
}

const (
	// AssignmentTypeAssignment is regular submitted work.
	AssignmentTypeAssignment = "assignment"
	// AssignmentTypeQuiz carries quiz questions and auto-scoring.
	AssignmentTypeQuiz = "quiz"
	// AssignmentTypeQuestion is a single-question prompt.
	AssignmentTypeQuestion = "question"
)

// DefaultMaxPoints applies when an assignment does not define points-possible.
const DefaultMaxPoints = 100.0

// PointsPossible resolves the denominator used for grade computation.
func (a Assignment) PointsPossible() float64 {
	if a.MaxPoints == nil || *a.MaxPoints <= 0 {
		return DefaultMaxPoints
	}
	return *a.MaxPoints
}

// IsPastDue reports whether the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}
