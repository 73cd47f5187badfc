package localchat

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a configuration or request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrInputClosed indicates the input source ended: end of file, Ctrl+D,
	// or Ctrl+C at the prompt.
	ErrInputClosed = errors.New("input closed")

	// ErrInterrupted indicates a turn was cancelled while streaming.
	ErrInterrupted = errors.New("interrupted")
)
