// services/errors.go - Error taxonomy shared by all services
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors returned by the service layer. Handlers translate these to
// HTTP statuses: not-found errors to 404, conflicts to 409, the rest to 400.
var (
	ErrCourseNotFound = errors.New("course not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrVoterNotFound  = errors.New("voter not found")
	ErrVoteNotFound   = errors.New("vote not found")
	ErrRoleNotFound   = errors.New("role not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrPhotoNotFound  = errors.New("photo not found")

	// Voting conflicts
	ErrGroupLocked  = errors.New("voting for this group has ended")
	ErrAlreadyVoted = errors.New("you have already voted for this group")

	// Validation failures
	ErrInvalidVoteType   = errors.New("vote_type must be 1 or -1")
	ErrVoterVerifyFailed = errors.New("voter verification failed")
	ErrCourseMismatch    = errors.New("voter and group belong to different courses")
	ErrNameRequired      = errors.New("name is required")
	ErrPhoneRequired     = errors.New("phone is required")
	ErrInvalidWeight     = errors.New("weight must be at least 1")

	// Uniqueness conflicts on admin-managed entities
	ErrDuplicateCourse = errors.New("a course with this name already exists")
	ErrDuplicateRole   = errors.New("a role with this name already exists in the course")
	ErrDuplicateVoter  = errors.New("a voter with this phone already exists in the course")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrVoterNotFound) ||
		errors.Is(err, ErrVoteNotFound) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrPhotoNotFound)
}

// IsConflict reports whether err is a conflict with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrGroupLocked) ||
		errors.Is(err, ErrAlreadyVoted) ||
		errors.Is(err, ErrDuplicateCourse) ||
		errors.Is(err, ErrDuplicateRole) ||
		errors.Is(err, ErrDuplicateVoter)
}

// IsValidation reports whether err is a request-validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidVoteType) ||
		errors.Is(err, ErrVoterVerifyFailed) ||
		errors.Is(err, ErrCourseMismatch) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrPhoneRequired) ||
		errors.Is(err, ErrInvalidWeight)
}

// isUniqueViolation detects a unique-index insert failure across drivers.
// PostgreSQL reports "duplicate key value", SQLite (tests) reports "UNIQUE
// constraint failed"; newer GORM drivers translate both to ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
