package onedrive

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors. Typed errors returned by the SDK unwrap to one of these so
// callers can branch with errors.Is.
var (
	ErrReauthRequired              = errors.New("re-authentication required")
	ErrAccessDenied                = errors.New("access denied")
	ErrRetryLater                  = errors.New("retry later")
	ErrInvalidRequest              = errors.New("invalid request")
	ErrResourceNotFound            = errors.New("resource not found")
	ErrConflict                    = errors.New("conflict")
	ErrQuotaExceeded               = errors.New("quota exceeded")
	ErrAuthenticationFailure       = errors.New("authentication failure")
	ErrAuthorizationPending        = errors.New("authorization pending")
	ErrAuthorizationDeclined       = errors.New("authorization declined")
	ErrTokenExpired                = errors.New("token expired")
	ErrDecodingFailed              = errors.New("failed to decode response")
	ErrCancelled                   = errors.New("operation cancelled")
	ErrMalformedPaginationResponse = errors.New("malformed pagination response")
	ErrOperationFailed             = errors.New("operation failed")
)

// Error codes used by the service in the body of an error response.
const (
	CodeAccessDenied          = "accessDenied"
	CodeActivityLimitReached  = "activityLimitReached"
	CodeAuthenticationFailure = "authenticationFailure"
	CodeGeneralException      = "generalException"
	CodeInvalidRange          = "invalidRange"
	CodeInvalidRequest        = "invalidRequest"
	CodeItemNotFound          = "itemNotFound"
	CodeMalformedGraphRequest = "malformedGraphRequest"
	CodeNameAlreadyExists     = "nameAlreadyExists"
	CodeNotAllowed            = "notAllowed"
	CodeNotSupported          = "notSupported"
	CodeQuotaLimitReached     = "quotaLimitReached"
	CodeResourceModified      = "resourceModified"
	CodeServiceNotAvailable   = "serviceNotAvailable"
	CodeUnauthenticated       = "unauthenticated"
)

// TransportError reports that a request never produced an HTTP response.
type TransportError struct {
	Method string
	URL    string
	Err    error
	kind   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	if e.kind == nil {
		return []error{e.Err}
	}
	return []error{e.kind, e.Err}
}

// DecodeError reports a response body that could not be deserialized.
type DecodeError struct {
	Target string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: decoding %s response: %v", ErrDecodingFailed, e.Target, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecodingFailed, e.Err}
}

// APIError is a non-2xx response from the service. Code and Message come from
// the {"error":{"code","message"}} body when one could be decoded.
type APIError struct {
	StatusCode int
	Status     string
	Code       string
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		if e.StatusCode == 0 {
			return fmt.Sprintf("%s: %s", e.Code, e.Message)
		}
		return fmt.Sprintf("OneDrive API error %d: %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP error: %s", e.Status)
}

// Unwrap returns the sentinel the error was classified as, if any.
func (e *APIError) Unwrap() error {
	return e.kind
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newAPIError(res *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: res.StatusCode,
		Status:     res.Status,
	}
	if apiErr.Status == "" {
		apiErr.Status = fmt.Sprintf("%d %s", res.StatusCode, http.StatusText(res.StatusCode))
	}

	var oneDriveError errorResponse
	if err := json.Unmarshal(body, &oneDriveError); err == nil && oneDriveError.Error.Code != "" {
		apiErr.Code = oneDriveError.Error.Code
		apiErr.Message = oneDriveError.Error.Message
	}
	apiErr.kind = classify(apiErr.Code, apiErr.StatusCode)
	return apiErr
}

// newAuthenticationError reports a client-side authentication setup problem.
func newAuthenticationError(message string) *APIError {
	return &APIError{
		Code:    CodeAuthenticationFailure,
		Message: message,
		kind:    ErrAuthenticationFailure,
	}
}

// classify maps a service error code, falling back to the status code.
func classify(code string, statusCode int) error {
	switch strings.ToLower(code) {
	case strings.ToLower(CodeAccessDenied):
		return ErrAccessDenied
	case strings.ToLower(CodeActivityLimitReached), strings.ToLower(CodeServiceNotAvailable):
		return ErrRetryLater
	case strings.ToLower(CodeItemNotFound):
		return ErrResourceNotFound
	case strings.ToLower(CodeNameAlreadyExists), strings.ToLower(CodeResourceModified):
		return ErrConflict
	case strings.ToLower(CodeInvalidRange), strings.ToLower(CodeInvalidRequest),
		strings.ToLower(CodeMalformedGraphRequest), strings.ToLower(CodeNotAllowed),
		strings.ToLower(CodeNotSupported):
		return ErrInvalidRequest
	case strings.ToLower(CodeQuotaLimitReached):
		return ErrQuotaExceeded
	case strings.ToLower(CodeUnauthenticated):
		return ErrReauthRequired
	case strings.ToLower(CodeAuthenticationFailure):
		return ErrAuthenticationFailure
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return ErrReauthRequired
	case http.StatusForbidden:
		return ErrAccessDenied
	case http.StatusNotFound, http.StatusGone:
		return ErrResourceNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		return ErrConflict
	case http.StatusInsufficientStorage:
		return ErrQuotaExceeded
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return ErrRetryLater
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusNotAcceptable,
		http.StatusLengthRequired, http.StatusRequestEntityTooLarge, http.StatusRequestedRangeNotSatisfiable,
		http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity, http.StatusNotImplemented:
		return ErrInvalidRequest
	}
	return nil
}

// cancelled joins ErrCancelled with the context's error.
func cancelled(ctxErr error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
}
