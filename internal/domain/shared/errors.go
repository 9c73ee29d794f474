// Package shared contains common domain types, errors, and events used across
// the domain packages. This package has no external dependencies.
package shared

import "errors"

// Error kinds. Every registrar and roster error matches exactly one of them
// with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrInvalidFormat     = errors.New("invalid format")
)

// DomainError names one way a domain operation fails. Callers attach the
// offending ID by wrapping: fmt.Errorf("%w: %s", ErrStudentNotFound, id).
type DomainError struct {
	Domain string // "registrar", "roster"
	Op     string
	Kind   error
	Reason string
}

func (e *DomainError) Error() string {
	return e.Domain + "." + e.Op + ": " + e.Reason
}

// Unwrap exposes the kind, so errors.Is(err, ErrNotFound) holds for every
// not-found error.
func (e *DomainError) Unwrap() error { return e.Kind }

func define(domain, op string, kind error, reason string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Reason: reason}
}

var (
	ErrStudentNotFound       = define("registrar", "FindStudent", ErrNotFound, "student not found")
	ErrCourseNotFound        = define("registrar", "FindCourse", ErrNotFound, "course not found")
	ErrLecturerNotFound      = define("registrar", "FindLecturer", ErrNotFound, "lecturer not found")
	ErrStudentAlreadyExists  = define("registrar", "AddStudent", ErrAlreadyExists, "student already exists")
	ErrCourseAlreadyExists   = define("registrar", "AddCourse", ErrAlreadyExists, "course already exists")
	ErrLecturerAlreadyExists = define("registrar", "AddLecturer", ErrAlreadyExists, "lecturer already exists")
)

var (
	// ErrRosterUnavailable means the source could not be read at all. Loading
	// again may succeed.
	ErrRosterUnavailable = define("roster", "Load", ErrSourceUnavailable, "roster source unavailable")

	// ErrRosterMalformed means the source was read but its content is wrong.
	// Loading again returns the same error.
	ErrRosterMalformed = define("roster", "Parse", ErrInvalidFormat, "malformed roster")
)

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }
func IsValidation(err error) bool    { return errors.Is(err, ErrInvalidInput) }

// IsTransient reports whether retrying the failed operation can help.
func IsTransient(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) && !errors.Is(err, ErrInvalidFormat)
}
