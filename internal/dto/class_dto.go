package dto

import (
	"time"

	"github.com/noah-isme/classwork-go-api/internal/models"
)

// ClassCreateRequest describes the payload for creating a class.
type ClassCreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

// ClassJoinRequest carries the join code a student uses to enroll.
type ClassJoinRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// ClassResponse is returned to API clients when viewing classes.
type ClassResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	TeacherID uint      `json:"teacher_id"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}

// StudentLite summarizes a user without exposing credentials.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewClassResponse converts a Class model into a DTO.
func NewClassResponse(model models.Class) ClassResponse {
	return ClassResponse{
		ID:        model.ID,
		Name:      model.Name,
		Code:      model.Code,
		TeacherID: model.TeacherID,
		Archived:  model.Archived,
		CreatedAt: model.CreatedAt,
	}
}

// NewClassResponseSlice converts a slice of classes.
func NewClassResponseSlice(classes []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class))
	}
	return responses
}

// NewStudentLite converts a user model into its summary form.
func NewStudentLite(model models.User) StudentLite {
	return StudentLite{ID: model.ID, Name: model.Name, Email: model.Email}
}

// NewStudentLiteSlice converts a roster listing.
func NewStudentLiteSlice(users []models.User) []StudentLite {
	roster := make([]StudentLite, 0, len(users))
	for _, user := range users {
		roster = append(roster, NewStudentLite(user))
	}
	return roster
}
