package mustang

import "errors"

var (
	// ErrNotConnected is returned when an operation needs an open transport.
	ErrNotConnected = errors.New("mustang: device not connected")

	// ErrUnsupportedCategory is returned when no protocol variant exists for a model.
	ErrUnsupportedCategory = errors.New("mustang: amplifier does not belong to a supported category")

	// ErrMalformedResponse is returned when a burst is shorter than a command expects.
	ErrMalformedResponse = errors.New("mustang: malformed response")

	// ErrNoEffects is returned when an effect set to save is empty.
	ErrNoEffects = errors.New("mustang: at least one effect is required")
)
