package models

import "time"

// GradebookEntry is a derived projection of grading and excusal events.
// One row per (student, assignment); never created directly by a client.
type GradebookEntry struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ClassID        uint       `gorm:"not null;index" json:"class_id"`
	AssignmentID   uint       `gorm:"not null;uniqueIndex:idx_gradebook_pair" json:"assignment_id"`
	StudentID      uint       `gorm:"not null;uniqueIndex:idx_gradebook_pair" json:"student_id"`
	PointsEarned   *float64   `json:"points_earned"`
	PointsPossible float64    `gorm:"not null" json:"points_possible"`
	Percentage     *int       `json:"percentage"`
	LetterGrade    *string    `gorm:"size:2" json:"letter_grade"`
	IsExcused      bool       `gorm:"not null;default:false" json:"is_excused"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Assignment     Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student        User       `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// LetterGradeFor maps an integer percentage to the fixed letter scale.
func LetterGradeFor(percentage int) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}
