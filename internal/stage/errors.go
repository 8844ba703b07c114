package stage

import (
	"errors"
	"fmt"
)

// Kind classifies a capability failure. Fallback logic branches on the kind
// rather than swallowing every error: remote failures (service, network,
// process, malformed) are recoverable by a local fallback, while local I/O
// failures are not. If the disk is failing, the fallback will fail too.
type Kind string

const (
	// KindService is an error response from an external AI service.
	KindService Kind = "service"
	// KindNetwork is a transport-level failure reaching an external service.
	KindNetwork Kind = "network"
	// KindProcess is a non-zero exit from an external tool invocation.
	KindProcess Kind = "process"
	// KindMalformed is an unparseable or unusable external response.
	KindMalformed Kind = "malformed"
	// KindIO is a local filesystem failure.
	KindIO Kind = "io"
)

// Error is a tagged capability error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with a failure kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Errorf is a convenience for NewError with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the failure kind of err, or KindIO if err carries no tag.
// Untagged errors come from local file operations inside stage functions, so
// I/O is the conservative classification.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindIO
}

// recoverable reports whether a primary failure of this kind may be retried
// with the local fallback.
func recoverable(kind Kind) bool {
	return kind != KindIO
}
