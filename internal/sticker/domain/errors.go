package domain

import "errors"

var (
	// ErrIssuanceConflict surfaces after bounded internal retries; the
	// caller may retry the whole operation, issuance stays exactly-once.
	ErrIssuanceConflict = errors.New("sticker issuance conflict")

	ErrInvalidTierIndex = errors.New("tier index out of range")

	ErrStickerNotFound        = errors.New("sticker not found")
	ErrStickerExpired         = errors.New("sticker expired")
	ErrStickerAlreadyConsumed = errors.New("sticker already consumed")
)
