package scheduler

import "errors"

var (
	// ErrJobNotFound is returned for a job name that was never added
	ErrJobNotFound = errors.New("job not found")

	// ErrDuplicateJob is returned when a job name is added twice
	ErrDuplicateJob = errors.New("job already registered")

	// ErrInvalidSchedule is returned for an unparseable cron expression
	ErrInvalidSchedule = errors.New("invalid cron schedule")
)
