package types

import "errors"

// Sentinel errors surfaced across package boundaries.
var (
	ErrEmptyMessageText = errors.New("types: message memory requires non-empty content.text")
	ErrInvalidUUID      = errors.New("types: invalid uuid")
	ErrInvalidCharacter = errors.New("types: invalid character")
)
