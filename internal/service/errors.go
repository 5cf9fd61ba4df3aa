package service

import "errors"

// Typed errors so the delivery layer can map domain outcomes to HTTP codes.
var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrDeadlinePassed     = errors.New("submission deadline has passed")
	ErrMalformedRoster    = errors.New("malformed roster file")
	ErrMalformedCourseCSV = errors.New("malformed course file")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotFound      = errors.New("admin not found")
)
