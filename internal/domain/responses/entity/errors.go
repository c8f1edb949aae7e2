package entity

import "errors"

// Domain errors for response analytics
var (
	ErrInvalidDirection   = errors.New("invalid message direction")
	ErrInvalidTimeRange   = errors.New("invalid time range")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrUnorderedEvents    = errors.New("events are not sorted by timestamp")
	ErrUnauthorized       = errors.New("unauthorized to perform this action")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrSyncInProgress     = errors.New("sync already in progress for account")
	ErrRepositoryRequired = errors.New("repository required for this operation")
)
