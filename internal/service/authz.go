package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/classwork-go-api/internal/models"
	"github.com/noah-isme/classwork-go-api/internal/repository"
)

// Principal identifies the authenticated caller of an operation. It is
// threaded explicitly through every service method rather than read from
// ambient state.
type Principal struct {
	ID   uint
	Role string
}

// IsTeacher reports whether the principal carries the teacher role.
func (p Principal) IsTeacher() bool {
	return p.Role == models.RoleTeacher
}

// AccessGuard evaluates per-call-site authorization rules against class
// ownership and enrollment.
type AccessGuard struct {
	classes repository.ClassRepository
	logger  zerolog.Logger
}

// NewAccessGuard constructs the guard.
func NewAccessGuard(classes repository.ClassRepository, logger zerolog.Logger) *AccessGuard {
	return &AccessGuard{
		classes: classes,
		logger:  logger.With().Str("component", "access_guard").Logger(),
	}
}

// RequireClassTeacher fails with ErrNotAuthorized unless the user owns the class.
func (g *AccessGuard) RequireClassTeacher(ctx context.Context, classID, userID uint) error {
	owns, err := g.classes.IsTeacher(ctx, classID, userID)
	if err != nil {
		return err
	}
	if !owns {
		g.logger.Debug().Uint("class_id", classID).Uint("user_id", userID).Msg("class ownership check failed")
		return ErrNotAuthorized
	}
	return nil
}

// RequireEnrollment fails with ErrEnrollmentRequired unless the user has an
// enrollment row in the class. Teachers of the class pass implicitly.
func (g *AccessGuard) RequireEnrollment(ctx context.Context, classID, userID uint) error {
	owns, err := g.classes.IsTeacher(ctx, classID, userID)
	if err != nil {
		return err
	}
	if owns {
		return nil
	}

	enrolled, err := g.classes.IsEnrolled(ctx, classID, userID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrEnrollmentRequired
	}
	return nil
}

// RequireAssignmentAccess applies the read rules for an assignment: the owning
// teacher always passes; students need enrollment and, unless they own the
// class, a published assignment.
func (g *AccessGuard) RequireAssignmentAccess(ctx context.Context, assignment models.Assignment, principal Principal) error {
	if assignment.TeacherID == principal.ID {
		return nil
	}

	if err := g.RequireEnrollment(ctx, assignment.ClassID, principal.ID); err != nil {
		return err
	}

	if !assignment.Published {
		return ErrNotAuthorized
	}
	return nil
}

// RequireSubmissionAccess allows the submitting student and the teacher who
// owns the parent assignment.
func (g *AccessGuard) RequireSubmissionAccess(ctx context.Context, submission models.Submission, principal Principal) error {
	if submission.StudentID == principal.ID {
		return nil
	}
	return g.RequireClassTeacher(ctx, submission.Assignment.ClassID, principal.ID)
}
