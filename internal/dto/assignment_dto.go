package dto

import (
	"time"

	"github.com/noah-isme/classwork-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload for posting an assignment.
type AssignmentCreateRequest struct {
	ClassID     uint       `json:"class_id" validate:"required,gt=0"`
	Title       string     `json:"title" validate:"required,min=2,max=255"`
	Description string     `json:"description"`
	Type        string     `json:"type" validate:"omitempty,oneof=assignment quiz question"`
	DueDate     *time.Time `json:"due_date"`
	MaxPoints   *float64   `json:"max_points" validate:"omitempty,gt=0"`
	Published   bool       `json:"published"`
}

// AssignmentUpdateRequest patches mutable assignment fields.
type AssignmentUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=2,max=255"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	MaxPoints   *float64   `json:"max_points" validate:"omitempty,gt=0"`
	Published   *bool      `json:"published"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID          uint       `json:"id"`
	ClassID     uint       `json:"class_id"`
	TeacherID   uint       `json:"teacher_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	DueDate     *time.Time `json:"due_date"`
	MaxPoints   *float64   `json:"max_points"`
	Published   bool       `json:"published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AssignmentLite summarizes an assignment inside submission responses.
type AssignmentLite struct {
	ID      uint       `json:"id"`
	Title   string     `json:"title"`
	Type    string     `json:"type"`
	DueDate *time.Time `json:"due_date"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          model.ID,
		ClassID:     model.ClassID,
		TeacherID:   model.TeacherID,
		Title:       model.Title,
		Description: model.Description,
		Type:        model.Type,
		DueDate:     model.DueDate,
		MaxPoints:   model.MaxPoints,
		Published:   model.Published,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of assignments.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}
	return responses
}
