package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/classwork-go-api/internal/models"
)

// AssignmentAverage is one row of the class-average aggregation.
type AssignmentAverage struct {
	AssignmentID uint    `json:"assignment_id"`
	Average      float64 `json:"average"`
	EntryCount   int64   `json:"entry_count"`
}

// GradebookRepository defines data operations for the gradebook projection.
type GradebookRepository interface {
	GetByPair(ctx context.Context, studentID, assignmentID uint) (models.GradebookEntry, error)
	Upsert(ctx context.Context, entry *models.GradebookEntry) error
	ListByClass(ctx context.Context, classID uint) ([]models.GradebookEntry, error)
	ListByStudent(ctx context.Context, classID, studentID uint) ([]models.GradebookEntry, error)
	AveragesByAssignment(ctx context.Context, classID uint) ([]AssignmentAverage, error)
}

type gradebookRepository struct {
	db *gorm.DB
}

// NewGradebookRepository instantiates the repository.
func NewGradebookRepository(db *gorm.DB) GradebookRepository {
	return &gradebookRepository{db: db}
}

func (r *gradebookRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.GradebookEntry{}).
		Preload("Assignment").
		Preload("Student")
}

func (r *gradebookRepository) GetByPair(ctx context.Context, studentID, assignmentID uint) (models.GradebookEntry, error) {
	var entry models.GradebookEntry
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Where("assignment_id = ?", assignmentID).
		First(&entry).Error; err != nil {
		return models.GradebookEntry{}, err
	}
	return entry, nil
}

// Upsert writes the projection row atomically against the unique
// (student, assignment) index, so concurrent grade calls cannot duplicate it.
func (r *gradebookRepository) Upsert(ctx context.Context, entry *models.GradebookEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "assignment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"points_earned", "points_possible", "percentage", "letter_grade", "is_excused", "updated_at",
			}),
		}).
		Create(entry).Error
}

func (r *gradebookRepository) ListByClass(ctx context.Context, classID uint) ([]models.GradebookEntry, error) {
	var entries []models.GradebookEntry
	if err := r.baseQuery(ctx).
		Where("class_id = ?", classID).
		Order("student_id ASC, assignment_id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *gradebookRepository) ListByStudent(ctx context.Context, classID, studentID uint) ([]models.GradebookEntry, error) {
	var entries []models.GradebookEntry
	if err := r.baseQuery(ctx).
		Where("class_id = ?", classID).
		Where("student_id = ?", studentID).
		Order("assignment_id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// AveragesByAssignment excludes excused rows from both sum and count.
func (r *gradebookRepository) AveragesByAssignment(ctx context.Context, classID uint) ([]AssignmentAverage, error) {
	var averages []AssignmentAverage
	if err := r.db.WithContext(ctx).Model(&models.GradebookEntry{}).
		Select("assignment_id, AVG(percentage) AS average, COUNT(*) AS entry_count").
		Where("class_id = ?", classID).
		Where("is_excused = ?", false).
		Where("percentage IS NOT NULL").
		Group("assignment_id").
		Order("assignment_id ASC").
		Scan(&averages).Error; err != nil {
		return nil, err
	}
	return averages, nil
}
