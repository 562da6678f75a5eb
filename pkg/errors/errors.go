package errors

import (
	"fmt"
	"net/http"
)

// TransportError means the remote completion call failed at the network/HTTP
// layer. It is never retried automatically; the immediate caller decides.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnparsableResponseError means model output could not be coerced into the
// expected JSON shape after all recovery attempts. Whether it propagates or
// turns into a valued error record depends on the call site.
type UnparsableResponseError struct {
	Stage   string
	Preview string
	Err     error
}

func (e *UnparsableResponseError) Error() string {
	return fmt.Sprintf("%s: unparsable model response: %v", e.Stage, e.Err)
}

func (e *UnparsableResponseError) Unwrap() error { return e.Err }

// UnsupportedFormatError means a file could not be read as text even through
// the best-effort plain-text fallback.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %s", e.Name)
}

// StorageError wraps a persistence failure. Storage failures are logged and
// swallowed; they never block the pipeline.
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure for key %q: %v", e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ApiError is the JSON error envelope returned by the HTTP surface.
type ApiError struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

var (
	ErrBadRequest       = func(detail string) *ApiError { return New(http.StatusBadRequest, "Bad Request", detail) }
	ErrNotFound         = func(detail string) *ApiError { return New(http.StatusNotFound, "Not Found", detail) }
	ErrMethodNotAllowed = func(detail string) *ApiError { return New(http.StatusMethodNotAllowed, "Method Not Allowed", detail) }
	ErrInternalServer   = func(detail string) *ApiError {
		return New(http.StatusInternalServerError, "Internal Server Error", detail)
	}
	ErrUpstream = func(detail string) *ApiError {
		return New(http.StatusBadGateway, "Completion Backend Failed", detail)
	}
	ErrUnparsable = func(detail string) *ApiError {
		return New(http.StatusUnprocessableEntity, "Model Response Unparsable", detail)
	}
)

func New(code int, message, detail string) *ApiError {
	return &ApiError{
		Code:    code,
		Message: message,
		Detail:  detail,
	}
}

func (e *ApiError) WithRequestID(requestID string) *ApiError {
	e.RequestID = requestID
	return e
}

func (e *ApiError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *ApiError) StatusCode() int {
	return e.Code
}
