package shared

import "fmt"

var (
	// Input validation errors
	ErrValidation      = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")

	// Library errors
	ErrNotFound         = fmt.Errorf("not found")
	ErrInvalidOperation = fmt.Errorf("invalid operation")

	// Playback errors
	ErrNoPreview  = fmt.Errorf("no preview available")
	ErrPlayback   = fmt.Errorf("playback backend failure")
	ErrQueueEmpty = fmt.Errorf("queue is empty")

	// Storage errors
	ErrStorageIO = fmt.Errorf("storage i/o failure")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrAPIRequest       = fmt.Errorf("API request failed")
)
