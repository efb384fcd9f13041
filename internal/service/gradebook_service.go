package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go-api/internal/dto"
	"github.com/noah-isme/classwork-go-api/internal/models"
	"github.com/noah-isme/classwork-go-api/internal/repository"
)

// GradebookService owns the derived (student, assignment) grade projection.
// It is the only writer of letter grades.
type GradebookService interface {
	UpsertGrade(ctx context.Context, payload dto.GradeUpsertRequest, principal Principal) (dto.GradebookEntryResponse, error)
	Excuse(ctx context.Context, payload dto.ExcuseRequest, principal Principal) (dto.GradebookEntryResponse, error)
	ClassAverages(ctx context.Context, classID uint, principal Principal) ([]dto.ClassAverageResponse, error)
	ListByClass(ctx context.Context, classID uint, principal Principal) ([]dto.GradebookEntryResponse, error)
	ListByStudent(ctx context.Context, classID, studentID uint, principal Principal) ([]dto.GradebookEntryResponse, error)
	Export(ctx context.Context, classID uint, principal Principal) ([]dto.GradebookExportRow, error)
}

type gradebookService struct {
	entries     repository.GradebookRepository
	assignments repository.AssignmentRepository
	guard       *AccessGuard
	cache       *redis.Client
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewGradebookService constructs a GradebookService instance. The redis client
// is optional; without it averages are computed on every call.
func NewGradebookService(entries repository.GradebookRepository, assignments repository.AssignmentRepository, guard *AccessGuard, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) GradebookService {
	return &gradebookService{
		entries:     entries,
		assignments: assignments,
		guard:       guard,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger.With().Str("component", "gradebook_service").Logger(),
	}
}

// PercentageFor computes the integer grade percentage. math.Round rounds ties
// half away from zero, so 89.5% becomes 90.
func PercentageFor(pointsEarned, pointsPossible float64) int {
	if pointsPossible <= 0 {
		pointsPossible = models.DefaultMaxPoints
	}
	return int(math.Round(pointsEarned / pointsPossible * 100))
}

func (s *gradebookService) UpsertGrade(ctx context.Context, payload dto.GradeUpsertRequest, principal Principal) (dto.GradebookEntryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradebookEntryResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradebookEntryResponse{}, ErrAssignmentNotFound
		}
		return dto.GradebookEntryResponse{}, err
	}

	if err := s.guard.RequireClassTeacher(ctx, assignment.ClassID, principal.ID); err != nil {
		return dto.GradebookEntryResponse{}, err
	}

	pointsPossible := assignment.PointsPossible()
	percentage := PercentageFor(payload.PointsEarned, pointsPossible)
	letter := models.LetterGradeFor(percentage)

	pointsEarned := payload.PointsEarned
	entry := models.GradebookEntry{
		ClassID:        assignment.ClassID,
		AssignmentID:   assignment.ID,
		StudentID:      payload.StudentID,
		PointsEarned:   &pointsEarned,
		PointsPossible: pointsPossible,
		Percentage:     &percentage,
		LetterGrade:    &letter,
		IsExcused:      false,
	}

	if err := s.entries.Upsert(ctx, &entry); err != nil {
		return dto.GradebookEntryResponse{}, err
	}

	s.invalidateAverages(ctx, assignment.ClassID)

	stored, err := s.entries.GetByPair(ctx, payload.StudentID, assignment.ID)
	if err != nil {
		return dto.GradebookEntryResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", payload.StudentID).
		Uint("assignment_id", assignment.ID).
		Int("percentage", percentage).
		Str("letter_grade", letter).
		Msg("gradebook entry upserted")

	return dto.NewGradebookEntryResponse(stored), nil
}

// Excuse clears any prior grade fields rather than merely flagging them.
func (s *gradebookService) Excuse(ctx context.Context, payload dto.ExcuseRequest, principal Principal) (dto.GradebookEntryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradebookEntryResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradebookEntryResponse{}, ErrAssignmentNotFound
		}
		return dto.GradebookEntryResponse{}, err
	}

	if err := s.guard.RequireClassTeacher(ctx, assignment.ClassID, principal.ID); err != nil {
		return dto.GradebookEntryResponse{}, err
	}

	entry := models.GradebookEntry{
		ClassID:        assignment.ClassID,
		AssignmentID:   assignment.ID,
		StudentID:      payload.StudentID,
		PointsEarned:   nil,
		PointsPossible: assignment.PointsPossible(),
		Percentage:     nil,
		LetterGrade:    nil,
		IsExcused:      true,
	}

	if err := s.entries.Upsert(ctx, &entry); err != nil {
		return dto.GradebookEntryResponse{}, err
	}

	s.invalidateAverages(ctx, assignment.ClassID)

	stored, err := s.entries.GetByPair(ctx, payload.StudentID, assignment.ID)
	if err != nil {
		return dto.GradebookEntryResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", payload.StudentID).
		Uint("assignment_id", assignment.ID).
		Msg("assignment excused")

	return dto.NewGradebookEntryResponse(stored), nil
}

func (s *gradebookService) ClassAverages(ctx context.Context, classID uint, principal Principal) ([]dto.ClassAverageResponse, error) {
	if err := s.guard.RequireClassTeacher(ctx, classID, principal.ID); err != nil {
		return nil, err
	}

	cacheKey := averagesCacheKey(classID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response []dto.ClassAverageResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("class_id", classID).Msg("class averages cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read class averages cache")
		}
	}

	averages, err := s.entries.AveragesByAssignment(ctx, classID)
	if err != nil {
		return nil, err
	}

	response := dto.NewClassAverageResponseSlice(averages)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store class averages cache")
			}
		}
	}

	return response, nil
}

func (s *gradebookService) ListByClass(ctx context.Context, classID uint, principal Principal) ([]dto.GradebookEntryResponse, error) {
	if err := s.guard.RequireClassTeacher(ctx, classID, principal.ID); err != nil {
		return nil, err
	}

	entries, err := s.entries.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	return dto.NewGradebookEntryResponseSlice(entries), nil
}

func (s *gradebookService) ListByStudent(ctx context.Context, classID, studentID uint, principal Principal) ([]dto.GradebookEntryResponse, error) {
	// Students may read their own rows; anyone else must own the class.
	if principal.ID != studentID {
		if err := s.guard.RequireClassTeacher(ctx, classID, principal.ID); err != nil {
			return nil, err
		}
	} else if err := s.guard.RequireEnrollment(ctx, classID, principal.ID); err != nil {
		return nil, err
	}

	entries, err := s.entries.ListByStudent(ctx, classID, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewGradebookEntryResponseSlice(entries), nil
}

func (s *gradebookService) Export(ctx context.Context, classID uint, principal Principal) ([]dto.GradebookExportRow, error) {
	if err := s.guard.RequireClassTeacher(ctx, classID, principal.ID); err != nil {
		return nil, err
	}

	entries, err := s.entries.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	return dto.NewGradebookExportRows(entries), nil
}

func (s *gradebookService) invalidateAverages(ctx context.Context, classID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, averagesCacheKey(classID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("class_id", classID).Msg("failed to invalidate class averages cache")
	}
}

func averagesCacheKey(classID uint) string {
	return fmt.Sprintf("gradebook:averages:%d", classID)
}
