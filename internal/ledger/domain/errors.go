package domain

import "errors"

var (
	ErrInvalidCustomer       = errors.New("invalid customer id")
	ErrInvalidActionType     = errors.New("invalid action type")
	ErrUnknownActionType     = errors.New("action type not configured for tenant")
	ErrInvalidIdempotencyKey = errors.New("invalid idempotency key")
	ErrInvalidOccurredAt     = errors.New("invalid occurred_at timestamp")
	ErrInvalidPageToken      = errors.New("invalid page token")
)
