package api

import (
	"github.com/cockroachdb/errors"
)

// ErrorKind classifies an engine failure.
type ErrorKind string

const (
	KindSyntax    ErrorKind = "syntax"
	KindNotFound  ErrorKind = "not_found"
	KindExecution ErrorKind = "execution"
	KindCancelled ErrorKind = "cancelled"
	KindNotReady  ErrorKind = "not_ready"
	KindUnknown   ErrorKind = "unknown_operation"
)

// RemoteError is a failure reported by the engine. Message is shown to users
// verbatim.
type RemoteError struct {
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Is lets errors.Is match the package sentinels by kind.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrNotReady:
		return e.Kind == KindNotReady
	case ErrUnknownOperation:
		return e.Kind == KindUnknown
	}
	return false
}

var (
	// ErrNotReady is returned by FetchNext while the operation is running.
	ErrNotReady = errors.New("operation is still running")
	// ErrUnknownOperation is returned for handles the engine does not know.
	ErrUnknownOperation = errors.New("unknown operation handle")
)

// AsRemoteError converts any error into a RemoteError, keeping the kind of
// errors that already are (or wrap) one.
func AsRemoteError(err error) *RemoteError {
	var re *RemoteError
	switch {
	case errors.As(err, &re):
		return re
	case errors.Is(err, ErrNotReady):
		return &RemoteError{Kind: KindNotReady, Message: err.Error()}
	case errors.Is(err, ErrUnknownOperation):
		return &RemoteError{Kind: KindUnknown, Message: err.Error()}
	}
	return &RemoteError{Kind: KindExecution, Message: err.Error()}
}
