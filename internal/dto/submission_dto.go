package dto

import (
	"time"

	"github.com/noah-isme/classwork-go-api/internal/models"
)

// SubmitWorkRequest describes the payload for handing in work. Submitting
// again for the same assignment overwrites the earlier submission.
type SubmitWorkRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required,gt=0"`
	Content      string `json:"content"`
}

// GradeSubmissionRequest is used by a teacher to record a grade.
type GradeSubmissionRequest struct {
	PointsEarned float64 `json:"points_earned" validate:"gte=0"`
	Feedback     string  `json:"feedback"`
}

// ReturnSubmissionRequest sends work back to the student for revision.
type ReturnSubmissionRequest struct {
	Feedback string `json:"feedback" validate:"required,min=1"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint           `json:"id"`
	AssignmentID uint           `json:"assignment_id"`
	StudentID    uint           `json:"student_id"`
	Content      string         `json:"content"`
	Status       string         `json:"status"`
	PointsEarned *float64       `json:"points_earned"`
	Feedback     string         `json:"feedback"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	GradedAt     *time.Time     `json:"graded_at"`
	GradedBy     *uint          `json:"graded_by"`
	Assignment   AssignmentLite `json:"assignment"`
	Student      StudentLite    `json:"student"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Content:      model.Content,
		Status:       model.Status,
		PointsEarned: model.PointsEarned,
		Feedback:     model.Feedback,
		SubmittedAt:  model.SubmittedAt,
		GradedAt:     model.GradedAt,
		GradedBy:     model.GradedBy,
		Assignment: AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			Type:    model.Assignment.Type,
			DueDate: model.Assignment.DueDate,
		},
		Student: NewStudentLite(model.Student),
	}
}

// NewSubmissionResponseSlice converts a slice of submissions.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
