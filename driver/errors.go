package driver

import (
	"context"
	"fmt"

	"goDBDriver/api"

	"github.com/cockroachdb/errors"
)

// StatusCode classifies every error the driver returns.
type StatusCode int

const (
	SyntaxError StatusCode = iota + 1
	ObjectNotFound
	OperationNotComplete
	UnsupportedOperation
	ConnectionClosed
	CursorClosed
	ParametersNotBound
	ExecutionFailure
	StatementClosed
	Cancelled
	NoMoreRows
	InvalidColumn
	InvalidCursorPosition
	InvalidConversion
	InvalidArgument
)

var codeInfo = map[StatusCode]struct {
	name     string
	sqlState string
}{
	SyntaxError:           {"SyntaxError", "42000"},
	ObjectNotFound:        {"ObjectNotFound", "42S02"},
	OperationNotComplete:  {"OperationNotComplete", "HY010"},
	UnsupportedOperation:  {"UnsupportedOperation", "HYC00"},
	ConnectionClosed:      {"ConnectionClosed", "08003"},
	CursorClosed:          {"CursorClosed", "24000"},
	ParametersNotBound:    {"ParametersNotBound", "07001"},
	ExecutionFailure:      {"ExecutionFailure", "08S01"},
	StatementClosed:       {"StatementClosed", "HY000"},
	Cancelled:             {"Cancelled", "HY008"},
	NoMoreRows:            {"NoMoreRows", "02000"},
	InvalidColumn:         {"InvalidColumn", "07009"},
	InvalidCursorPosition: {"InvalidCursorPosition", "HY109"},
	InvalidConversion:     {"InvalidConversion", "22018"},
	InvalidArgument:       {"InvalidArgument", "HY024"},
}

func (c StatusCode) String() string {
	if info, ok := codeInfo[c]; ok {
		return info.name
	}
	return fmt.Sprintf("StatusCode(%d)", int(c))
}

// SQLState returns the five-character SQLSTATE of the code.
func (c StatusCode) SQLState() string {
	if info, ok := codeInfo[c]; ok {
		return info.sqlState
	}
	return "HY000"
}

// Error is the error type returned by the driver.
type Error struct {
	Code    StatusCode
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// SQLState returns the SQLSTATE of the error's code.
func (e *Error) SQLState() string {
	return e.Code.SQLState()
}

// ErrUnsupportedCursorMode marks statement creation with a cursor mode or
// concurrency the driver does not implement.
var ErrUnsupportedCursorMode = errors.New("unsupported cursor mode")

func newError(code StatusCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code StatusCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// CodeOf returns the status code of err, or 0 when err is not a driver
// error.
func CodeOf(err error) StatusCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return 0
}

// SQLStateOf returns the SQLSTATE of err, or "" for non-driver errors.
func SQLStateOf(err error) string {
	if code := CodeOf(err); code != 0 {
		return code.SQLState()
	}
	return ""
}

var remoteKinds = map[api.ErrorKind]StatusCode{
	api.KindSyntax:    SyntaxError,
	api.KindNotFound:  ObjectNotFound,
	api.KindExecution: ExecutionFailure,
	api.KindCancelled: Cancelled,
	api.KindNotReady:  OperationNotComplete,
	api.KindUnknown:   ExecutionFailure,
}

// fromBackend converts a Backend failure into a driver error. Engine
// messages are kept verbatim.
func fromBackend(err error) error {
	if err == nil {
		return nil
	}

	var de *Error
	if errors.As(err, &de) {
		return err
	}

	var re *api.RemoteError
	switch {
	case errors.Is(err, api.ErrNotReady):
		return wrapError(OperationNotComplete, err, "The query is still running")
	case errors.As(err, &re):
		code, ok := remoteKinds[re.Kind]
		if !ok {
			code = ExecutionFailure
		}
		return wrapError(code, err, "%s", re.Message)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrapError(Cancelled, err, "Query was cancelled: %s", err.Error())
	}
	return wrapError(ExecutionFailure, err, "%s", err.Error())
}

func errStatementClosed() error {
	return newError(StatementClosed, "Can't execute after statement has been closed")
}

func errConnectionClosed() error {
	return newError(ConnectionClosed, "Connection is closed")
}

func errCursorClosed() error {
	return newError(CursorClosed, "Resultset is closed")
}
