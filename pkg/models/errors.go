package models

import "errors"

// Domain errors shared by the storage, service and transport layers.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrSubjectNotFound   = errors.New("subject not found")
	ErrInvalidSubject    = errors.New("invalid subject")
	ErrInvalidMode       = errors.New("invalid mode")
	ErrInvalidMood       = errors.New("invalid mood value")
	ErrInvalidReflection = errors.New("invalid reflection reason")
	ErrBadgeRequired     = errors.New("badge id required")
	ErrPlanNotFound      = errors.New("plan not found")
	ErrInvalidXP         = errors.New("xp must not be negative")
	ErrInvalidHour       = errors.New("hour must be between 0 and 23")
)
