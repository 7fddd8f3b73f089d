package wifi

import (
	"errors"
	"fmt"
)

var (
	ErrNotSupported    = errors.New("not supported")
	ErrNotFound        = errors.New("not found")
	ErrNotAvailable    = errors.New("not available")
	ErrOperationFailed = errors.New("operation failed")

	// ErrEncoding is wrapped by every EncodingError.
	ErrEncoding = errors.New("string cannot be encoded for the backend")
	// ErrInvalidHandle is returned by every operation on a WiFi whose backend
	// handle could not be created.
	ErrInvalidHandle = errors.New("invalid backend handle")
	// ErrClosed is returned by operations on a WiFi after Close.
	ErrClosed = errors.New("wifi manager is closed")
)

// EncodingError reports a string that cannot cross the backend boundary as a
// NUL-terminated buffer.
type EncodingError struct {
	Field  string
	Offset int // byte offset of the embedded NUL
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s contains a NUL byte at offset %d", e.Field, e.Offset)
}

func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}
