package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientSources means fewer than two source roadmaps could be resolved.
	ErrInsufficientSources = errors.New("at least 2 roadmaps are required for merging")
	// ErrTooManySources means the request named more roadmaps than a merge accepts.
	ErrTooManySources = errors.New("too many roadmaps requested for merging")
	// ErrInvalidScheduleParameter means the daily study budget is not a positive number of hours.
	ErrInvalidScheduleParameter = errors.New("daily study hours must be greater than 0")
	// ErrInvalidScheduleMode means schedule_mode is not one of none, auto or manual.
	ErrInvalidScheduleMode = errors.New("schedule mode must be one of none, auto, manual")
	// ErrAlreadyExists is returned on unique key conflicts.
	ErrAlreadyExists = errors.New("already exists")
)
