package service

import "errors"

// Shared failure taxonomy. Handlers map these onto HTTP statuses; services
// never retry internally.
var (
	// ErrNotAuthorized indicates the entity exists but the caller lacks the
	// capability to act on it.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrEnrollmentRequired indicates a student is not enrolled in the class.
	ErrEnrollmentRequired = errors.New("enrollment required")
	// ErrInvalidState indicates a submission status transition that the state
	// machine does not permit.
	ErrInvalidState = errors.New("invalid submission state transition")
)

// Per-entity not-found sentinels.
var (
	ErrClassNotFound        = errors.New("class not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrQuestionNotFound     = errors.New("quiz question not found")
	ErrEntryNotFound        = errors.New("gradebook entry not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
