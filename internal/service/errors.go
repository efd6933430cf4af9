package service

import (
	"errors"
	"fmt"

	"github.com/noah-isme/turmas-api/internal/repository"
)

var (
	// ErrDuplicateEmail indicates another account already uses the email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials indicates the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound indicates no account exists for the email or id.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotAuthenticated indicates there is no valid session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUnauthorized indicates the actor's role or ownership forbids the operation.
	ErrUnauthorized = errors.New("operation not permitted for this user")

	ErrClassNotFound      = errors.New("class not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrGradeNotFound      = errors.New("grade not found")

	// ErrAlreadyEnrolled indicates the student holds an active enrollment in the class.
	ErrAlreadyEnrolled = errors.New("student already enrolled in class")
	// ErrClassFull indicates the class has no free seats.
	ErrClassFull = errors.New("class is full")
	// ErrNotEnrolled indicates the student has no active enrollment in the class.
	ErrNotEnrolled = errors.New("student not enrolled in class")
	// ErrEmptyComment indicates nothing remains of the comment after sanitising.
	ErrEmptyComment = errors.New("comment is empty")
	// ErrCommentTooLong indicates the sanitised comment exceeds MaxCommentLength.
	ErrCommentTooLong = errors.New("comment is too long")
)

// translateNotFound maps repository.ErrNotFound to the entity sentinel and wraps
// everything else with the operation name.
func translateNotFound(op string, err error, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
