package service

import "errors"

var (
	// ErrGenerationFailed indicates no usable assignment could be produced. Callers may retry.
	ErrGenerationFailed = errors.New("assignment generation failed")
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrStudentNotFound indicates the referenced student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrAssignmentCompleted indicates a graded assignment was modified.
	ErrAssignmentCompleted = errors.New("assignment already completed")
	// ErrAssignmentConflict indicates a concurrent write won the race for the assignment.
	ErrAssignmentConflict = errors.New("assignment was modified concurrently")
	// ErrForbidden indicates the caller may not act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownQuestion indicates an answer referenced a question id not in the assignment.
	ErrUnknownQuestion = errors.New("unknown question id")
	// ErrInvalidInput indicates a request that passed structural validation but cannot be used.
	ErrInvalidInput = errors.New("invalid input")
)
