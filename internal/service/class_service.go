package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go-api/internal/dto"
	"github.com/noah-isme/classwork-go-api/internal/models"
	"github.com/noah-isme/classwork-go-api/internal/repository"
)

// Join codes avoid easily-confused characters (0/O, 1/I/L).
const classCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const classCodeLength = 6

const classCodeMaxAttempts = 5

// ClassService orchestrates class lifecycle and enrollment workflows.
type ClassService interface {
	Create(ctx context.Context, payload dto.ClassCreateRequest, principal Principal) (dto.ClassResponse, error)
	Join(ctx context.Context, payload dto.ClassJoinRequest, principal Principal) (dto.ClassResponse, error)
	Archive(ctx context.Context, classID uint, principal Principal) (dto.ClassResponse, error)
	ListMine(ctx context.Context, principal Principal) ([]dto.ClassResponse, error)
	Roster(ctx context.Context, classID uint, principal Principal) ([]dto.StudentLite, error)
}

type classService struct {
	classes   repository.ClassRepository
	guard     *AccessGuard
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewClassService constructs a ClassService instance.
func NewClassService(classes repository.ClassRepository, guard *AccessGuard, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		classes:   classes,
		guard:     guard,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
		now:       time.Now,
	}
}

func (s *classService) Create(ctx context.Context, payload dto.ClassCreateRequest, principal Principal) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	if !principal.IsTeacher() {
		return dto.ClassResponse{}, ErrNotAuthorized
	}

	// The code column is unique; retry a few times on the rare collision.
	var lastErr error
	for attempt := 0; attempt < classCodeMaxAttempts; attempt++ {
		code, err := generateClassCode()
		if err != nil {
			return dto.ClassResponse{}, err
		}

		class := models.Class{
			Name:      payload.Name,
			Code:      code,
			TeacherID: principal.ID,
		}
		if err := s.classes.Create(ctx, &class); err != nil {
			lastErr = err
			continue
		}

		s.logger.Info().Uint("class_id", class.ID).Str("code", class.Code).Msg("class created")
		return dto.NewClassResponse(class), nil
	}

	return dto.ClassResponse{}, lastErr
}

func (s *classService) Join(ctx context.Context, payload dto.ClassJoinRequest, principal Principal) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.classes.GetByCode(ctx, payload.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	if class.Archived {
		return dto.ClassResponse{}, ErrNotAuthorized
	}

	enrollment := models.Enrollment{
		ClassID:    class.ID,
		UserID:     principal.ID,
		EnrolledAt: s.now(),
	}
	if err := s.classes.Enroll(ctx, &enrollment); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Uint("user_id", principal.ID).Msg("student enrolled")

	return dto.NewClassResponse(class), nil
}

func (s *classService) Archive(ctx context.Context, classID uint, principal Principal) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	if class.TeacherID != principal.ID {
		return dto.ClassResponse{}, ErrNotAuthorized
	}

	class.Archived = true
	if err := s.classes.Update(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) ListMine(ctx context.Context, principal Principal) ([]dto.ClassResponse, error) {
	var (
		classes []models.Class
		err     error
	)
	if principal.IsTeacher() {
		classes, err = s.classes.ListByTeacher(ctx, principal.ID)
	} else {
		classes, err = s.classes.ListByStudent(ctx, principal.ID)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewClassResponseSlice(classes), nil
}

func (s *classService) Roster(ctx context.Context, classID uint, principal Principal) ([]dto.StudentLite, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	if err := s.guard.RequireEnrollment(ctx, classID, principal.ID); err != nil {
		return nil, err
	}

	users, err := s.classes.Roster(ctx, classID)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentLiteSlice(users), nil
}

func generateClassCode() (string, error) {
	code := make([]byte, classCodeLength)
	max := big.NewInt(int64(len(classCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = classCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
