// Package apierror maps internal failures onto the canonical wire error
// shape and HTTP status codes.
package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/digitalemployee/site-gateway/pkg/site/auth"
	"github.com/digitalemployee/site-gateway/pkg/site/leads"
)

type ErrorType string

const (
	ErrInvalidRequest ErrorType = "invalid_request_error"
	ErrAuthentication ErrorType = "authentication_error"
	ErrPermission     ErrorType = "permission_error"
	ErrNotFound       ErrorType = "not_found_error"
	ErrRateLimit      ErrorType = "rate_limit_error"
	ErrStorage        ErrorType = "storage_error"
	ErrProvider       ErrorType = "provider_error"
	ErrAPI            ErrorType = "api_error"
)

// Error is the canonical error payload returned by every endpoint.
type Error struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Param     string    `json:"param,omitempty"`
	Code      string    `json:"code,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return string(e.Type) + ": " + e.Message
}

type Envelope struct {
	Error *Error `json:"error"`
}

// FromError classifies err into a canonical error and HTTP status.
func FromError(err error, requestID string) (*Error, int) {
	if err == nil {
		return nil, http.StatusOK
	}

	// Context timeouts/cancellation.
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Type:      ErrAPI,
			Message:   "request timeout",
			RequestID: requestID,
		}, http.StatusGatewayTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &Error{
			Type:      ErrAPI,
			Message:   "request cancelled",
			Code:      "cancelled",
			RequestID: requestID,
		}, http.StatusRequestTimeout
	}

	// Already canonical.
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr != nil {
		out := *apiErr
		out.RequestID = requestID
		return &out, StatusFromType(apiErr.Type)
	}

	// Lead capture.
	var fieldErr *leads.ValidationError
	if errors.As(err, &fieldErr) && fieldErr != nil {
		return &Error{
			Type:      ErrInvalidRequest,
			Message:   fieldErr.Message,
			Param:     fieldErr.Field,
			RequestID: requestID,
		}, http.StatusBadRequest
	}
	var storeErr *leads.StorageError
	if errors.As(err, &storeErr) && storeErr != nil {
		return &Error{
			Type:      ErrStorage,
			Message:   "could not record submission, please try again",
			Code:      storeErr.Op,
			RequestID: requestID,
		}, http.StatusServiceUnavailable
	}

	// Identity bridge.
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return &Error{
			Type:      ErrAuthentication,
			Message:   "invalid email or password",
			RequestID: requestID,
		}, http.StatusUnauthorized
	}
	if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordMismatch) || errors.Is(err, auth.ErrWeakPassword) {
		return &Error{
			Type:      ErrInvalidRequest,
			Message:   err.Error(),
			Param:     "password",
			RequestID: requestID,
		}, http.StatusBadRequest
	}
	if errors.Is(err, auth.ErrEmailTaken) {
		return &Error{
			Type:      ErrInvalidRequest,
			Message:   "an account with this email already exists",
			Param:     "email",
			RequestID: requestID,
		}, http.StatusConflict
	}
	var idpErr *auth.ProviderError
	if errors.As(err, &idpErr) && idpErr != nil {
		return &Error{
			Type:      ErrProvider,
			Message:   "identity provider unavailable",
			Code:      idpErr.Op,
			RequestID: requestID,
		}, http.StatusBadGateway
	}

	// Unknown errors: treat as internal API error (do not leak details by default).
	return &Error{
		Type:      ErrAPI,
		Message:   "internal error",
		RequestID: requestID,
	}, http.StatusInternalServerError
}

func StatusFromType(t ErrorType) int {
	switch t {
	case ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrAuthentication:
		return http.StatusUnauthorized
	case ErrPermission:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrRateLimit:
		return http.StatusTooManyRequests
	case ErrStorage:
		return http.StatusServiceUnavailable
	case ErrProvider:
		return http.StatusBadGateway
	case ErrAPI:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
