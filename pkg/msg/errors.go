package msg

import (
	"errors"
	"fmt"
)

// Errors returned while decoding a .msg storage tree
var (
	// Structural errors
	ErrMissingStream = errors.New("missing stream")
	ErrCorrupted     = errors.New("corrupted data")
	ErrNotStream     = errors.New("node is not a stream")
	ErrNotStorage    = errors.New("node is not a storage")

	// Value errors
	ErrUnsupportedType = errors.New("unsupported property type")
)

// Error carries the context of a decoding failure: which operation failed,
// on which fixed-name stream, and at which offset or size.
type Error struct {
	Err       error  // The underlying sentinel error
	Operation string // The decoding step that failed
	Object    string // The stream or storage name involved
	Detail    string // Offsets, sizes or indexes
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Object != "" && e.Detail != "" {
		return fmt.Sprintf("%s: %s [%s]: %v", e.Operation, e.Object, e.Detail, e.Err)
	} else if e.Object != "" {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Object, e.Err)
	} else if e.Detail != "" {
		return fmt.Sprintf("%s: %v [%s]", e.Operation, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(err error, operation, object, detail string) error {
	return &Error{
		Err:       err,
		Operation: operation,
		Object:    object,
		Detail:    detail,
	}
}

func missingStream(operation, name string) error {
	return newError(ErrMissingStream, operation, name, "")
}

func corrupted(operation, name string, format string, args ...interface{}) error {
	return newError(ErrCorrupted, operation, name, fmt.Sprintf(format, args...))
}

// IsMissingStream reports whether err was caused by an absent fixed-name stream.
func IsMissingStream(err error) bool {
	return errors.Is(err, ErrMissingStream)
}

// IsCorrupted reports whether err was caused by a size, alignment or bounds violation.
func IsCorrupted(err error) bool {
	return errors.Is(err, ErrCorrupted)
}

// StreamName returns the stream or storage name recorded in err, if any.
func StreamName(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Object
	}
	return ""
}
