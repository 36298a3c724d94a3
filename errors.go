package siggen

import (
	"errors"
	"fmt"
)

// Common errors returned by the generator.
var (
	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrBackend indicates the audio backend could not provide a stream.
	ErrBackend = errors.New("audio backend failure")

	// ErrMalformedMessage indicates a wire frame that could not be decoded.
	ErrMalformedMessage = errors.New("malformed message received")

	// ErrInvalidMessage indicates a message that cannot be encoded.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrUnknownShape indicates an unrecognized waveform name.
	ErrUnknownShape = errors.New("unknown wave shape")
)

// DecodeError describes why a wire frame was rejected.
type DecodeError struct {
	Offset int    // byte offset where decoding failed
	Reason string // human readable cause
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s at byte %d", ErrMalformedMessage, e.Reason, e.Offset)
}

// Unwrap lets callers match ErrMalformedMessage with errors.Is.
func (e *DecodeError) Unwrap() error {
	return ErrMalformedMessage
}
