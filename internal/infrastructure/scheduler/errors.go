package scheduler

import "errors"

var (
	// ErrQueueNotRunning is returned when trying to submit a job to a stopped queue
	ErrQueueNotRunning = errors.New("sync queue is not running")

	// ErrQueueFull is returned when the job queue is full
	ErrQueueFull = errors.New("sync queue is full")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrUnknownJobKind is returned for jobs the executor does not recognize
	ErrUnknownJobKind = errors.New("unknown sync job kind")
)
