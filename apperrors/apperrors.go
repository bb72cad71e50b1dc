// Package apperrors holds the error taxonomy shared by the remote clients
// and the local store. Every failure is advisory: it is shown to the user
// as a single message and never terminates the process.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNetwork
	KindRemoteStatus
	KindDecode
	KindConfiguration
	KindEmptyCompletion
	KindNoData
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNetwork:
		return "network"
	case KindRemoteStatus:
		return "remote_status"
	case KindDecode:
		return "decode"
	case KindConfiguration:
		return "configuration"
	case KindEmptyCompletion:
		return "empty_completion"
	case KindNoData:
		return "no_data"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error is returned by the catalog, review feed and summarization clients
// and by the app store.
type Error struct {
	// Op names the component that failed, e.g. "catalog" or "reviews".
	Op         string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatusCode maps the error kind to the status returned by the local API.
func (e *Error) HTTPStatusCode() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNoData:
		return http.StatusNotFound
	case KindConfiguration:
		return http.StatusPreconditionFailed
	case KindNetwork, KindRemoteStatus, KindDecode, KindEmptyCompletion:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func InvalidInput(op, message string) *Error {
	return &Error{Op: op, Kind: KindInvalidInput, Message: message}
}

func Network(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNetwork, Message: fmt.Sprintf("Network error: %v", err), Err: err}
}

func RemoteStatus(op string, statusCode int, message string) *Error {
	return &Error{Op: op, Kind: KindRemoteStatus, StatusCode: statusCode, Message: message}
}

func Decode(op string, err error) *Error {
	return &Error{Op: op, Kind: KindDecode, Message: fmt.Sprintf("Data parsing error: %v", err), Err: err}
}

func Configuration(op, message string) *Error {
	return &Error{Op: op, Kind: KindConfiguration, Message: message}
}

func EmptyCompletion(op, message string) *Error {
	return &Error{Op: op, Kind: KindEmptyCompletion, Message: message}
}

func NoData(op, message string) *Error {
	return &Error{Op: op, Kind: KindNoData, Message: message}
}

func Store(op string, err error) *Error {
	return &Error{Op: op, Kind: KindStore, Message: fmt.Sprintf("Failed to %s: %v", op, err), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
