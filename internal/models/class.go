package models

import "time"

// Class represents a course owned by a single teacher.
type Class struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Code      string    `gorm:"size:6;uniqueIndex;not null" json:"code"`
	TeacherID uint      `gorm:"not null;index" json:"teacher_id"`
	Archived  bool      `gorm:"not null;default:false" json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Teacher   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher"`
}

// Enrollment links a student to a class. One row per (class, student) pair.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClassID    uint      `gorm:"not null;uniqueIndex:idx_enrollment_pair" json:"class_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_enrollment_pair" json:"user_id"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	CreatedAt  time.Time `json:"created_at"`
	Class      Class     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"class"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}
