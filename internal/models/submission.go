package models

import "time"

// Submission is a student's answer to an assignment. The store keeps at most
// one row per (assignment, student) pair; re-submitting updates it in place.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_submission_pair" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;uniqueIndex:idx_submission_pair" json:"student_id"`
	Content      string     `gorm:"type:text" json:"content"`
	Status       string     `gorm:"size:32;not null" json:"status"`
	PointsEarned *float64   `json:"points_earned"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	SubmittedAt  time.Time  `gorm:"not null" json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at"`
	GradedBy     *uint      `json:"graded_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      User       `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// Submission statuses. "pending" is implicit: no row exists yet.
const (
	// SubmissionStatusSubmitted indicates work has been handed in but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates a teacher recorded a grade.
	SubmissionStatusGraded = "graded"
	// SubmissionStatusReturned indicates the teacher sent the work back for revision.
	SubmissionStatusReturned = "returned"
)

// submissionTransitions is the allowed status transition table. Resubmitting
// over a final grade is the one rejected move; everything else the grading
// workflow needs is explicitly listed.
var submissionTransitions = map[string]map[string]bool{
	SubmissionStatusSubmitted: {
		SubmissionStatusSubmitted: true,
		SubmissionStatusGraded:    true,
		SubmissionStatusReturned:  true,
	},
	SubmissionStatusGraded: {
		SubmissionStatusGraded:   true,
		SubmissionStatusReturned: true,
	},
	SubmissionStatusReturned: {
		SubmissionStatusSubmitted: true,
		SubmissionStatusGraded:    true,
		SubmissionStatusReturned:  true,
	},
}

// CanTransition reports whether a submission may move from one status to another.
func CanTransition(from, to string) bool {
	allowed, ok := submissionTransitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}

// IsGraded reports whether the submission carries a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
