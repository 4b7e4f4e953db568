package domain

import "errors"

var (
	// ErrConfigNotFound means the tenant is unknown; fatal to the calling
	// request, never retried.
	ErrConfigNotFound = errors.New("tenant config not found")

	ErrTenantExists      = errors.New("tenant already exists")
	ErrInvalidSlug       = errors.New("invalid tenant slug")
	ErrInvalidName       = errors.New("invalid tenant name")
	ErrInvalidTierTable  = errors.New("tier table must be strictly increasing in threshold and discount")
	ErrInvalidActionType = errors.New("invalid action type")
	ErrInvalidPoints     = errors.New("action points must be positive")
	ErrInvalidValidity   = errors.New("sticker validity must be positive")
)
