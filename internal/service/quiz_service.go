package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go-api/internal/dto"
	"github.com/noah-isme/classwork-go-api/internal/models"
	"github.com/noah-isme/classwork-go-api/internal/observability"
	"github.com/noah-isme/classwork-go-api/internal/repository"
)

// QuizService owns quiz questions, answer sheets and auto-scoring.
type QuizService interface {
	CreateQuestion(ctx context.Context, payload dto.QuizQuestionCreateRequest, principal Principal) (dto.QuizQuestionResponse, error)
	DeleteQuestion(ctx context.Context, questionID uint, principal Principal) error
	ListQuestions(ctx context.Context, assignmentID uint, principal Principal) ([]dto.QuizQuestionResponse, error)
	SubmitAnswers(ctx context.Context, submissionID uint, payload dto.QuizAnswersRequest, principal Principal) (dto.SubmissionResponse, error)
	Results(ctx context.Context, assignmentID uint, principal Principal) ([]dto.QuizResultGroup, error)
}

type quizService struct {
	quiz        repository.QuizRepository
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	guard       *AccessGuard
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewQuizService constructs a QuizService instance.
func NewQuizService(quiz repository.QuizRepository, submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, guard *AccessGuard, validate *validator.Validate, logger zerolog.Logger) QuizService {
	return &quizService{
		quiz:        quiz,
		submissions: submissions,
		assignments: assignments,
		guard:       guard,
		validator:   validate,
		logger:      logger.With().Str("component", "quiz_service").Logger(),
		now:         time.Now,
	}
}

func (s *quizService) CreateQuestion(ctx context.Context, payload dto.QuizQuestionCreateRequest, principal Principal) (dto.QuizQuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizQuestionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizQuestionResponse{}, ErrAssignmentNotFound
		}
		return dto.QuizQuestionResponse{}, err
	}

	if err := s.guard.RequireClassTeacher(ctx, assignment.ClassID, principal.ID); err != nil {
		return dto.QuizQuestionResponse{}, err
	}

	var choices datatypes.JSON
	if len(payload.Choices) > 0 {
		encoded, err := json.Marshal(payload.Choices)
		if err != nil {
			return dto.QuizQuestionResponse{}, err
		}
		choices = datatypes.JSON(encoded)
	}

	question := models.QuizQuestion{
		AssignmentID:  assignment.ID,
		Text:          payload.Text,
		Type:          payload.Type,
		CorrectAnswer: payload.CorrectAnswer,
		Choices:       choices,
		Points:        payload.Points,
	}

	// The repository assigns the next order index inside the insert transaction.
	if err := s.quiz.CreateQuestion(ctx, &question); err != nil {
		return dto.QuizQuestionResponse{}, err
	}

	s.logger.Info().
		Uint("question_id", question.ID).
		Uint("assignment_id", assignment.ID).
		Int("order_index", question.OrderIndex).
		Msg("quiz question created")

	return dto.NewQuizQuestionResponse(question, true), nil
}

func (s *quizService) DeleteQuestion(ctx context.Context, questionID uint, principal Principal) error {
	question, err := s.quiz.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	assignment, err := s.assignments.GetByID(ctx, question.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if err := s.guard.RequireClassTeacher(ctx, assignment.ClassID, principal.ID); err != nil {
		return err
	}

	// Delete and the contiguity-repair reindex run in one transaction.
	if err := s.quiz.DeleteQuestion(ctx, question); err != nil {
		return err
	}

	s.logger.Info().
		Uint("question_id", question.ID).
		Uint("assignment_id", question.AssignmentID).
		Msg("quiz question deleted")

	return nil
}

// ListQuestions returns the assignment's questions in order. Students always
// receive a redacted answer key, whatever the submission state.
func (s *quizService) ListQuestions(ctx context.Context, assignmentID uint, principal Principal) ([]dto.QuizQuestionResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if err := s.guard.RequireAssignmentAccess(ctx, assignment, principal); err != nil {
		return nil, err
	}

	questions, err := s.quiz.ListQuestions(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	includeKey := assignment.TeacherID == principal.ID
	return dto.NewQuizQuestionResponseSlice(questions, includeKey), nil
}

// SubmitAnswers replaces the answer rows for each answered question, scores
// the objective ones and writes the auto-score total onto the submission. The
// total is advisory until a teacher finalizes it through the grading path, so
// no gradebook entry is created here.
func (s *quizService) SubmitAnswers(ctx context.Context, submissionID uint, payload dto.QuizAnswersRequest, principal Principal) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/classwork-go-api/internal/service/quiz")
	ctx, span := tracer.Start(ctx, "quiz.submit_answers")
	span.SetAttributes(
		attribute.Int64("quiz.submission_id", int64(submissionID)),
		attribute.Int("quiz.answer_count", len(payload.Answers)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if submission.StudentID != principal.ID {
		span.SetStatus(codes.Error, "not_authorized")
		return dto.SubmissionResponse{}, ErrNotAuthorized
	}

	if !models.CanTransition(submission.Status, models.SubmissionStatusSubmitted) {
		span.SetStatus(codes.Error, "invalid_state")
		return dto.SubmissionResponse{}, ErrInvalidState
	}

	autoScoreTotal := 0.0
	for _, answer := range payload.Answers {
		question, err := s.quiz.GetQuestion(ctx, answer.QuestionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				span.SetStatus(codes.Error, "question_not_found")
				return dto.SubmissionResponse{}, ErrQuestionNotFound
			}
			span.RecordError(err)
			return dto.SubmissionResponse{}, err
		}
		if question.AssignmentID != submission.AssignmentID {
			span.SetStatus(codes.Error, "question_not_found")
			return dto.SubmissionResponse{}, ErrQuestionNotFound
		}

		isCorrect, pointsAwarded := scoreAnswer(question, answer.Answer)
		record := models.QuizAnswer{
			SubmissionID:  submission.ID,
			QuestionID:    question.ID,
			Answer:        answer.Answer,
			IsCorrect:     isCorrect,
			PointsAwarded: pointsAwarded,
		}
		if err := s.quiz.ReplaceAnswer(ctx, &record); err != nil {
			span.RecordError(err)
			return dto.SubmissionResponse{}, err
		}

		if question.IsAutoScored() {
			autoScoreTotal += pointsAwarded
			observability.QuizAnswersScoredTotal().WithLabelValues(question.Type).Inc()
		}
	}

	submission.PointsEarned = &autoScoreTotal
	submission.Status = models.SubmissionStatusSubmitted
	submission.SubmittedAt = s.now()

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(attribute.Float64("quiz.auto_score_total", autoScoreTotal))
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Float64("auto_score_total", autoScoreTotal).
		Int("answers", len(payload.Answers)).
		Msg("quiz answers scored")

	return dto.NewSubmissionResponse(submission), nil
}

// Results groups each submission with its student and answers. Teacher-only.
func (s *quizService) Results(ctx context.Context, assignmentID uint, principal Principal) ([]dto.QuizResultGroup, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if err := s.guard.RequireClassTeacher(ctx, assignment.ClassID, principal.ID); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	groups := make([]dto.QuizResultGroup, 0, len(submissions))
	for _, submission := range submissions {
		answers, err := s.quiz.ListAnswersBySubmission(ctx, submission.ID)
		if err != nil {
			return nil, err
		}

		groups = append(groups, dto.QuizResultGroup{
			Student:    dto.NewStudentLite(submission.Student),
			Submission: dto.NewSubmissionResponse(submission),
			Answers:    dto.NewQuizAnswerResponseSlice(answers),
		})
	}

	return groups, nil
}

// scoreAnswer decides correctness for objective questions. Essay and keyless
// questions stay unscored: correctness nil, zero points, pending manual
// grading.
func scoreAnswer(question models.QuizQuestion, answer string) (*bool, float64) {
	if !question.IsAutoScored() {
		return nil, 0
	}

	correct := question.MatchesAnswer(answer)
	points := 0.0
	if correct {
		points = question.Points
	}
	return &correct, points
}
