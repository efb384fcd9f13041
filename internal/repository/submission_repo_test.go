package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classwork-go-api/internal/models"
)

func TestSubmissionUpsertKeepsOneRowPerPair(t *testing.T) {
	db := setupTestDB(t)
	ids := seedClasswork(t, db, "SUB001", "sub-upsert@example.com")
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	first := models.Submission{
		AssignmentID: ids.assignmentID,
		StudentID:    ids.studentID,
		Content:      "first draft",
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.Upsert(ctx, &first))

	second := models.Submission{
		AssignmentID: ids.assignmentID,
		StudentID:    ids.studentID,
		Content:      "second draft",
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  time.Now(),
	}
	require.NoError(t, repo.Upsert(ctx, &second))

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).
		Where("assignment_id = ? AND student_id = ?", ids.assignmentID, ids.studentID).
		Count(&count).Error)
	require.Equal(t, int64(1), count)

	stored, err := repo.GetByPair(ctx, ids.assignmentID, ids.studentID)
	require.NoError(t, err)
	require.Equal(t, "second draft", stored.Content)
	require.Equal(t, first.ID, stored.ID)
}

func TestSubmissionUpsertPreservesGradeFields(t *testing.T) {
	db := setupTestDB(t)
	ids := seedClasswork(t, db, "SUB002", "sub-grade@example.com")
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	points := 42.0
	gradedAt := time.Now().Add(-time.Minute)
	graded := models.Submission{
		AssignmentID: ids.assignmentID,
		StudentID:    ids.studentID,
		Content:      "graded work",
		Status:       models.SubmissionStatusReturned,
		PointsEarned: &points,
		Feedback:     "solid",
		SubmittedAt:  time.Now().Add(-time.Hour),
		GradedAt:     &gradedAt,
		GradedBy:     &ids.teacherID,
	}
	require.NoError(t, db.Create(&graded).Error)

	resubmission := models.Submission{
		AssignmentID: ids.assignmentID,
		StudentID:    ids.studentID,
		Content:      "revised work",
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  time.Now(),
	}
	require.NoError(t, repo.Upsert(ctx, &resubmission))

	stored, err := repo.GetByPair(ctx, ids.assignmentID, ids.studentID)
	require.NoError(t, err)
	require.Equal(t, "revised work", stored.Content)
	require.Equal(t, models.SubmissionStatusSubmitted, stored.Status)
	// Only the resubmission columns change; the grading history stays.
	require.NotNil(t, stored.PointsEarned)
	require.Equal(t, 42.0, *stored.PointsEarned)
	require.Equal(t, "solid", stored.Feedback)
}

func TestListPendingForTeacher(t *testing.T) {
	db := setupTestDB(t)
	mine := seedClasswork(t, db, "SUB003", "sub-mine@example.com")
	other := seedClasswork(t, db, "SUB004", "sub-other@example.com")
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	waiting := models.Submission{AssignmentID: mine.assignmentID, StudentID: mine.studentID, Status: models.SubmissionStatusSubmitted, SubmittedAt: time.Now()}
	require.NoError(t, db.Create(&waiting).Error)
	graded := models.Submission{AssignmentID: mine.assignmentID, StudentID: other.studentID, Status: models.SubmissionStatusGraded, SubmittedAt: time.Now()}
	require.NoError(t, db.Create(&graded).Error)
	foreign := models.Submission{AssignmentID: other.assignmentID, StudentID: other.studentID, Status: models.SubmissionStatusSubmitted, SubmittedAt: time.Now()}
	require.NoError(t, db.Create(&foreign).Error)

	pending, err := repo.ListPendingForTeacher(ctx, mine.teacherID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, waiting.ID, pending[0].ID)
	require.Equal(t, mine.assignmentID, pending[0].Assignment.ID, "assignment must be preloaded")
}
