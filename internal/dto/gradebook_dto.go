package dto

import (
	"time"

	"github.com/noah-isme/classwork-go-api/internal/models"
	"github.com/noah-isme/classwork-go-api/internal/repository"
)

// GradeUpsertRequest records or overwrites a grade for a (student, assignment) pair.
type GradeUpsertRequest struct {
	StudentID    uint    `json:"student_id" validate:"required,gt=0"`
	AssignmentID uint    `json:"assignment_id" validate:"required,gt=0"`
	PointsEarned float64 `json:"points_earned" validate:"gte=0"`
}

// ExcuseRequest marks a (student, assignment) pair as excused.
type ExcuseRequest struct {
	StudentID    uint `json:"student_id" validate:"required,gt=0"`
	AssignmentID uint `json:"assignment_id" validate:"required,gt=0"`
}

// GradebookEntryResponse is returned to API clients when viewing the gradebook.
type GradebookEntryResponse struct {
	ID             uint           `json:"id"`
	ClassID        uint           `json:"class_id"`
	AssignmentID   uint           `json:"assignment_id"`
	StudentID      uint           `json:"student_id"`
	PointsEarned   *float64       `json:"points_earned"`
	PointsPossible float64        `json:"points_possible"`
	Percentage     *int           `json:"percentage"`
	LetterGrade    *string        `json:"letter_grade"`
	IsExcused      bool           `json:"is_excused"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Assignment     AssignmentLite `json:"assignment"`
	Student        StudentLite    `json:"student"`
}

// ClassAverageResponse is one assignment's average across non-excused entries.
type ClassAverageResponse struct {
	AssignmentID uint    `json:"assignment_id"`
	Average      float64 `json:"average"`
	EntryCount   int64   `json:"entry_count"`
}

// GradebookExportRow is one flattened row of the class export.
type GradebookExportRow struct {
	StudentName     string   `json:"student_name"`
	StudentEmail    string   `json:"student_email"`
	AssignmentTitle string   `json:"assignment_title"`
	PointsEarned    *float64 `json:"points_earned"`
	PointsPossible  float64  `json:"points_possible"`
	Percentage      *int     `json:"percentage"`
	LetterGrade     *string  `json:"letter_grade"`
	IsExcused       bool     `json:"is_excused"`
}

// NewGradebookEntryResponse converts a GradebookEntry model into a DTO.
func NewGradebookEntryResponse(model models.GradebookEntry) GradebookEntryResponse {
	return GradebookEntryResponse{
		ID:             model.ID,
		ClassID:        model.ClassID,
		AssignmentID:   model.AssignmentID,
		StudentID:      model.StudentID,
		PointsEarned:   model.PointsEarned,
		PointsPossible: model.PointsPossible,
		Percentage:     model.Percentage,
		LetterGrade:    model.LetterGrade,
		IsExcused:      model.IsExcused,
		UpdatedAt:      model.UpdatedAt,
		Assignment: AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			Type:    model.Assignment.Type,
			DueDate: model.Assignment.DueDate,
		},
		Student: NewStudentLite(model.Student),
	}
}

// NewGradebookEntryResponseSlice converts a gradebook listing.
func NewGradebookEntryResponseSlice(entries []models.GradebookEntry) []GradebookEntryResponse {
	responses := make([]GradebookEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewGradebookEntryResponse(entry))
	}
	return responses
}

// NewClassAverageResponseSlice converts the repository aggregation rows.
func NewClassAverageResponseSlice(averages []repository.AssignmentAverage) []ClassAverageResponse {
	responses := make([]ClassAverageResponse, 0, len(averages))
	for _, average := range averages {
		responses = append(responses, ClassAverageResponse{
			AssignmentID: average.AssignmentID,
			Average:      average.Average,
			EntryCount:   average.EntryCount,
		})
	}
	return responses
}

// NewGradebookExportRows flattens gradebook entries for CSV export.
func NewGradebookExportRows(entries []models.GradebookEntry) []GradebookExportRow {
	rows := make([]GradebookExportRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, GradebookExportRow{
			StudentName:     entry.Student.Name,
			StudentEmail:    entry.Student.Email,
			AssignmentTitle: entry.Assignment.Title,
			PointsEarned:    entry.PointsEarned,
			PointsPossible:  entry.PointsPossible,
			Percentage:      entry.Percentage,
			LetterGrade:     entry.LetterGrade,
			IsExcused:       entry.IsExcused,
		})
	}
	return rows
}
