package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/classwork-go-api/internal/models"
)

// ClassRepository defines data operations for classes and enrollments.
type ClassRepository interface {
	GetByID(ctx context.Context, id uint) (models.Class, error)
	GetByCode(ctx context.Context, code string) (models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Class, error)
	Enroll(ctx context.Context, enrollment *models.Enrollment) error
	IsTeacher(ctx context.Context, classID, userID uint) (bool, error)
	IsEnrolled(ctx context.Context, classID, userID uint) (bool, error)
	Roster(ctx context.Context, classID uint) ([]models.User, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository instantiates the repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Preload("Teacher").First(&class, id).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) GetByCode(ctx context.Context, code string) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&class).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) Update(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.class_id = classes.id").
		Where("enrollments.user_id = ?", studentID).
		Order("classes.created_at DESC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

// Enroll is idempotent: joining a class twice keeps the original row.
func (r *classRepository) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(enrollment).Error
}

func (r *classRepository) IsTeacher(ctx context.Context, classID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Class{}).
		Where("id = ? AND teacher_id = ?", classID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *classRepository) IsEnrolled(ctx context.Context, classID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("class_id = ? AND user_id = ?", classID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *classRepository) Roster(ctx context.Context, classID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Where("enrollments.class_id = ?", classID).
		Order("users.name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
