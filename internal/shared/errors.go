package shared

import "errors"

var (
	// Configuration errors
	ErrMissingConfig = errors.New("configuration not found")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Library errors
	ErrInvalidFolder    = errors.New("invalid folder path")
	ErrNotADirectory    = errors.New("path is not a directory")
	ErrNoFolderSelected = errors.New("no folder selected")
	ErrVideoNotFound    = errors.New("video not found")
	ErrPermission       = errors.New("permission denied")

	// API and service errors
	ErrAPIRequest         = errors.New("API request failed")
	ErrServiceUnavailable = errors.New("service unavailable")

	// Input validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
)
