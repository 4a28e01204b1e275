package sinks

import "errors"

var (
	// ErrDisabled is returned by a Connect function when its sink is switched
	// off in configuration.
	ErrDisabled = errors.New("sink disabled")

	// ErrConnectionFailed is returned when the backend cannot be reached.
	ErrConnectionFailed = errors.New("sink connection failed")

	// ErrPublishFailed is returned when a reading could not be delivered.
	ErrPublishFailed = errors.New("sink publish failed")
)
