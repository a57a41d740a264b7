package domain

import "errors"

var (
	// ErrUnreadableInput marks a structural failure while extracting a table.
	ErrUnreadableInput = errors.New("unreadable input")
	// ErrInvalidConfig marks a configuration that cannot be loaded or fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrRunNotFound   = errors.New("pipeline run not found")
)

func IsUnreadableInput(err error) bool {
	return errors.Is(err, ErrUnreadableInput)
}

func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsRunNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
