package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go-api/internal/models"
)

// QuizRepository defines data operations for quiz questions and answers.
type QuizRepository interface {
	GetQuestion(ctx context.Context, id uint) (models.QuizQuestion, error)
	ListQuestions(ctx context.Context, assignmentID uint) ([]models.QuizQuestion, error)
	CreateQuestion(ctx context.Context, question *models.QuizQuestion) error
	DeleteQuestion(ctx context.Context, question models.QuizQuestion) error
	ReplaceAnswer(ctx context.Context, answer *models.QuizAnswer) error
	ListAnswersBySubmission(ctx context.Context, submissionID uint) ([]models.QuizAnswer, error)
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository instantiates the repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) GetQuestion(ctx context.Context, id uint) (models.QuizQuestion, error) {
	var question models.QuizQuestion
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return models.QuizQuestion{}, err
	}
	return question, nil
}

func (r *quizRepository) ListQuestions(ctx context.Context, assignmentID uint) ([]models.QuizQuestion, error) {
	var questions []models.QuizQuestion
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("order_index ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// CreateQuestion assigns the next order index inside the insert transaction so
// concurrent creators cannot collide on the same slot.
func (r *quizRepository) CreateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxIndex int
		row := tx.Model(&models.QuizQuestion{}).
			Where("assignment_id = ?", question.AssignmentID).
			Select("COALESCE(MAX(order_index), 0)").
			Row()
		if err := row.Scan(&maxIndex); err != nil {
			return err
		}

		question.OrderIndex = maxIndex + 1
		return tx.Create(question).Error
	})
}

// DeleteQuestion removes the question and shifts every later question in the
// same assignment down by one, keeping order indexes contiguous. Both steps
// run in one transaction.
func (r *quizRepository) DeleteQuestion(ctx context.Context, question models.QuizQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.QuizQuestion{}, question.ID).Error; err != nil {
			return err
		}

		return tx.Model(&models.QuizQuestion{}).
			Where("assignment_id = ?", question.AssignmentID).
			Where("order_index > ?", question.OrderIndex).
			UpdateColumn("order_index", gorm.Expr("order_index - 1")).Error
	})
}

// ReplaceAnswer drops any prior answer for the (submission, question) pair and
// inserts the new one.
func (r *quizRepository) ReplaceAnswer(ctx context.Context, answer *models.QuizAnswer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("submission_id = ? AND question_id = ?", answer.SubmissionID, answer.QuestionID).
			Delete(&models.QuizAnswer{}).Error; err != nil {
			return err
		}

		return tx.Create(answer).Error
	})
}

func (r *quizRepository) ListAnswersBySubmission(ctx context.Context, submissionID uint) ([]models.QuizAnswer, error) {
	var answers []models.QuizAnswer
	if err := r.db.WithContext(ctx).
		Preload("Question").
		Where("submission_id = ?", submissionID).
		Joins("JOIN quiz_questions ON quiz_questions.id = quiz_answers.question_id").
		Order("quiz_questions.order_index ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}
