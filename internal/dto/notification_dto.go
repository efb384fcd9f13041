package dto

import (
	"time"

	"github.com/noah-isme/classwork-go-api/internal/models"
)

// NotificationCreateRequest describes an outbound notification event.
type NotificationCreateRequest struct {
	RecipientID  uint   `json:"recipient_id" validate:"required,gt=0"`
	Title        string `json:"title" validate:"required,min=1,max=255"`
	Message      string `json:"message" validate:"required,min=1"`
	Type         string `json:"type" validate:"required,min=1,max=64"`
	ClassID      *uint  `json:"class_id"`
	AssignmentID *uint  `json:"assignment_id"`
}

// NotificationResponse is returned to API clients and streamed over SSE.
type NotificationResponse struct {
	ID           uint      `json:"id"`
	RecipientID  uint      `json:"recipient_id"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Type         string    `json:"type"`
	ClassID      *uint     `json:"class_id"`
	AssignmentID *uint     `json:"assignment_id"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewNotificationResponse converts a Notification model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:           model.ID,
		RecipientID:  model.RecipientID,
		Title:        model.Title,
		Message:      model.Message,
		Type:         model.Type,
		ClassID:      model.ClassID,
		AssignmentID: model.AssignmentID,
		Read:         model.Read,
		CreatedAt:    model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a notification listing.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}
	return responses
}
