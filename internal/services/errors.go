package services

import "errors"

// Errors returned by the services. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidScore       = errors.New("invalid score")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrDuplicateRating    = errors.New("photo already rated")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)
