package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go-api/internal/dto"
	"github.com/noah-isme/classwork-go-api/internal/models"
	"github.com/noah-isme/classwork-go-api/internal/repository"
)

// AssignmentService orchestrates assignment lifecycle workflows.
type AssignmentService interface {
	Create(ctx context.Context, payload dto.AssignmentCreateRequest, principal Principal) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, principal Principal) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint, principal Principal) error
	Get(ctx context.Context, id uint, principal Principal) (dto.AssignmentResponse, error)
	ListForClass(ctx context.Context, classID uint, principal Principal) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	guard       *AccessGuard
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignments repository.AssignmentRepository, guard *AccessGuard, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		guard:       guard,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest, principal Principal) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.guard.RequireClassTeacher(ctx, payload.ClassID, principal.ID); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignmentType := payload.Type
	if assignmentType == "" {
		assignmentType = models.AssignmentTypeAssignment
	}

	assignment := models.Assignment{
		ClassID:     payload.ClassID,
		TeacherID:   principal.ID,
		Title:       payload.Title,
		Description: s.sanitizer.Sanitize(payload.Description),
		Type:        assignmentType,
		DueDate:     payload.DueDate,
		MaxPoints:   payload.MaxPoints,
		Published:   payload.Published,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("class_id", assignment.ClassID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, principal Principal) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.getOwned(ctx, id, principal)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.DueDate != nil {
		assignment.DueDate = payload.DueDate
	}
	if payload.MaxPoints != nil {
		assignment.MaxPoints = payload.MaxPoints
	}
	if payload.Published != nil {
		assignment.Published = *payload.Published
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint, principal Principal) error {
	assignment, err := s.getOwned(ctx, id, principal)
	if err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, assignment.ID); err != nil {
		return err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) Get(ctx context.Context, id uint, principal Principal) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if err := s.guard.RequireAssignmentAccess(ctx, assignment, principal); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) ListForClass(ctx context.Context, classID uint, principal Principal) ([]dto.AssignmentResponse, error) {
	if err := s.guard.RequireEnrollment(ctx, classID, principal.ID); err != nil {
		return nil, err
	}

	owns, err := s.guard.classes.IsTeacher(ctx, classID, principal.ID)
	if err != nil {
		return nil, err
	}

	filter := repository.AssignmentFilter{ClassID: &classID, PublishedOnly: !owns}
	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) getOwned(ctx context.Context, id uint, principal Principal) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	if err := s.guard.RequireClassTeacher(ctx, assignment.ClassID, principal.ID); err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}
