package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go-api/internal/dto"
	"github.com/noah-isme/classwork-go-api/internal/models"
	"github.com/noah-isme/classwork-go-api/internal/observability"
	"github.com/noah-isme/classwork-go-api/internal/repository"
)

// Notifier is the narrow emission interface the grading path depends on.
// Emission is fire-and-forget: failures are logged, never surfaced.
type Notifier interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
}

// SubmissionService owns the submission state machine: work moves from an
// implicit pending state through submitted, graded and returned.
type SubmissionService interface {
	SubmitWork(ctx context.Context, payload dto.SubmitWorkRequest, principal Principal) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, principal Principal) (dto.SubmissionResponse, error)
	ReturnForRevision(ctx context.Context, submissionID uint, payload dto.ReturnSubmissionRequest, principal Principal) (dto.SubmissionResponse, error)
	ListForAssignment(ctx context.Context, assignmentID uint, principal Principal) ([]dto.SubmissionResponse, error)
	GetForStudent(ctx context.Context, assignmentID, studentID uint, principal Principal) (dto.SubmissionResponse, error)
	ListPending(ctx context.Context, principal Principal) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	gradebook   GradebookService
	notifier    Notifier
	guard       *AccessGuard
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, gradebook GradebookService, notifier Notifier, guard *AccessGuard, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		gradebook:   gradebook,
		notifier:    notifier,
		guard:       guard,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		tracer:      otel.Tracer("github.com/noah-isme/classwork-go-api/internal/service/submission"),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// SubmitWork creates the submission row on first submit and updates it in
// place on every later one. The upsert keys on (assignment, student), so two
// concurrent submits converge on a single row.
func (s *submissionService) SubmitWork(ctx context.Context, payload dto.SubmitWorkRequest, principal Principal) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if err := s.guard.RequireEnrollment(ctx, assignment.ClassID, principal.ID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if existing, err := s.submissions.GetByPair(ctx, assignment.ID, principal.ID); err == nil {
		if !models.CanTransition(existing.Status, models.SubmissionStatusSubmitted) {
			return dto.SubmissionResponse{}, ErrInvalidState
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    principal.ID,
		Content:      s.sanitizer.Sanitize(payload.Content),
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  s.now(),
	}

	if err := s.submissions.Upsert(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	stored, err := s.submissions.GetByPair(ctx, assignment.ID, principal.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsReceivedTotal().WithLabelValues(assignment.Type).Inc()
	s.logger.Info().
		Uint("submission_id", stored.ID).
		Uint("assignment_id", assignment.ID).
		Uint("student_id", principal.ID).
		Msg("work submitted")

	return dto.NewSubmissionResponse(stored), nil
}

// Grade records a grade, projects it into the gradebook and notifies the
// student. Re-grading is idempotent: the latest call wins and re-runs the
// projection.
func (s *submissionService) Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, principal Principal) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.grade")
	span.SetAttributes(
		attribute.Int64("submission.id", int64(submissionID)),
		attribute.Int64("submission.grader_id", int64(principal.ID)),
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

	if err := s.guard.RequireClassTeacher(ctx, submission.Assignment.ClassID, principal.ID); err != nil {
		span.SetStatus(codes.Error, "not_authorized")
		return dto.SubmissionResponse{}, err
	}

	if !models.CanTransition(submission.Status, models.SubmissionStatusGraded) {
		span.SetStatus(codes.Error, "invalid_state")
		return dto.SubmissionResponse{}, ErrInvalidState
	}

	pointsEarned := payload.PointsEarned
	gradedAt := s.now()
	graderID := principal.ID
	submission.PointsEarned = &pointsEarned
	submission.Feedback = s.sanitizer.Sanitize(payload.Feedback)
	submission.Status = models.SubmissionStatusGraded
	submission.GradedAt = &gradedAt
	submission.GradedBy = &graderID

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	// The projection must land even though the notification may not; a grade
	// without a gradebook row is an invariant violation, so its error aborts.
	if _, err := s.gradebook.UpsertGrade(ctx, dto.GradeUpsertRequest{
		StudentID:    submission.StudentID,
		AssignmentID: submission.AssignmentID,
		PointsEarned: pointsEarned,
	}, principal); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gradebook_projection_failed")
		return dto.SubmissionResponse{}, err
	}

	s.emit(ctx, dto.NotificationCreateRequest{
		RecipientID:  submission.StudentID,
		Title:        "Grade received",
		Message:      fmt.Sprintf("Your submission for %q was graded: %.0f points.", submission.Assignment.Title, pointsEarned),
		Type:         models.NotificationTypeGradeReceived,
		ClassID:      &submission.Assignment.ClassID,
		AssignmentID: &submission.AssignmentID,
	})

	observability.SubmissionsGradedTotal().Inc()
	span.SetAttributes(attribute.Float64("submission.points_earned", pointsEarned))

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("graded_by", principal.ID).
		Float64("points_earned", pointsEarned).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

// ReturnForRevision flips the submission to returned without touching
// points_earned or the gradebook.
func (s *submissionService) ReturnForRevision(ctx context.Context, submissionID uint, payload dto.ReturnSubmissionRequest, principal Principal) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if err := s.guard.RequireClassTeacher(ctx, submission.Assignment.ClassID, principal.ID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !models.CanTransition(submission.Status, models.SubmissionStatusReturned) {
		return dto.SubmissionResponse{}, ErrInvalidState
	}

	graderID := principal.ID
	submission.Status = models.SubmissionStatusReturned
	submission.Feedback = s.sanitizer.Sanitize(payload.Feedback)
	submission.GradedBy = &graderID

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.emit(ctx, dto.NotificationCreateRequest{
		RecipientID:  submission.StudentID,
		Title:        "Work returned",
		Message:      fmt.Sprintf("Your submission for %q was returned for revision.", submission.Assignment.Title),
		Type:         models.NotificationTypeCommentAdded,
		ClassID:      &submission.Assignment.ClassID,
		AssignmentID: &submission.AssignmentID,
	})

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("returned_by", principal.ID).
		Msg("submission returned for revision")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListForAssignment(ctx context.Context, assignmentID uint, principal Principal) ([]dto.SubmissionResponse, error) {
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

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) GetForStudent(ctx context.Context, assignmentID, studentID uint, principal Principal) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByPair(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if err := s.guard.RequireSubmissionAccess(ctx, submission, principal); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListPending(ctx context.Context, principal Principal) ([]dto.SubmissionResponse, error) {
	if !principal.IsTeacher() {
		return nil, ErrNotAuthorized
	}

	submissions, err := s.submissions.ListPendingForTeacher(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) emit(ctx context.Context, payload dto.NotificationCreateRequest) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Publish(ctx, payload); err != nil {
		s.logger.Warn().Err(err).
			Uint("recipient_id", payload.RecipientID).
			Str("type", payload.Type).
			Msg("failed to emit notification")
	}
}
