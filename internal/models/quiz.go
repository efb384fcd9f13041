package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// QuizQuestion belongs to a quiz assignment. OrderIndex values stay contiguous
// from 1 within an assignment; deletion shifts later questions down.
type QuizQuestion struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	AssignmentID  uint           `gorm:"not null;index" json:"assignment_id"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	Type          string         `gorm:"size:32;not null" json:"type"`
	CorrectAnswer *string        `gorm:"type:text" json:"correct_answer,omitempty"`
	Choices       datatypes.JSON `gorm:"type:json" json:"choices"`
	Points        float64        `gorm:"not null;default:1" json:"points"`
	OrderIndex    int            `gorm:"not null" json:"order_index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

const (
	// QuestionTypeMultipleChoice compares the answer against a fixed choice key.
	QuestionTypeMultipleChoice = "multiple_choice"
	// QuestionTypeTrueFalse is a two-option objective question.
	QuestionTypeTrueFalse = "true_false"
	// QuestionTypeShortAnswer is free text compared against an exact key.
	QuestionTypeShortAnswer = "short_answer"
	// QuestionTypeEssay requires manual grading; never auto-scored.
	QuestionTypeEssay = "essay"
)

// IsAutoScored reports whether the engine can decide correctness without a teacher.
func (q QuizQuestion) IsAutoScored() bool {
	return q.CorrectAnswer != nil && q.Type != QuestionTypeEssay
}

// MatchesAnswer compares a raw answer against the question key, trimming
// whitespace and ignoring case.
func (q QuizQuestion) MatchesAnswer(answer string) bool {
	if q.CorrectAnswer == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(*q.CorrectAnswer))
}

// QuizAnswer records a student's answer for one question within a submission.
// Re-answering replaces the row for the (submission, question) pair.
type QuizAnswer struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	SubmissionID  uint         `gorm:"not null;uniqueIndex:idx_answer_pair" json:"submission_id"`
	QuestionID    uint         `gorm:"not null;uniqueIndex:idx_answer_pair" json:"question_id"`
	Answer        string       `gorm:"type:text" json:"answer"`
	IsCorrect     *bool        `json:"is_correct"`
	PointsAwarded float64      `gorm:"not null;default:0" json:"points_awarded"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Question      QuizQuestion `gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"question"`
}
