package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidStatus  = errors.New("invalid player status")
	ErrInvalidField   = errors.New("field cannot be updated")

	// Mission errors
	ErrMissionNotFound       = errors.New("mission not found")
	ErrSecretMissionNotFound = errors.New("secret mission not found")

	// Recipient roster errors
	ErrRecipientExists   = errors.New("recipient already exists")
	ErrRecipientNotFound = errors.New("recipient not found")

	// Lore errors
	ErrLoreUnavailable = errors.New("lore data unavailable")
	ErrLoreNavigation  = errors.New("lore path cannot be resolved")

	// Persistence errors
	ErrSave = errors.New("error saving data")

	// Callback payload errors
	ErrBadPayload = errors.New("malformed callback payload")
)
