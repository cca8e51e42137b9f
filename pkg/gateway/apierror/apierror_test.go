package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/digitalemployee/site-gateway/pkg/site/auth"
	"github.com/digitalemployee/site-gateway/pkg/site/leads"
)

func TestFromErrorNil(t *testing.T) {
	apiErr, status := FromError(nil, "req_1")
	if apiErr != nil || status != http.StatusOK {
		t.Fatalf("got (%v, %d), want (nil, 200)", apiErr, status)
	}
}

func TestFromErrorContext(t *testing.T) {
	apiErr, status := FromError(context.DeadlineExceeded, "req_1")
	if status != http.StatusGatewayTimeout || apiErr.Type != ErrAPI {
		t.Fatalf("deadline: got (%+v, %d)", apiErr, status)
	}

	apiErr, status = FromError(context.Canceled, "req_1")
	if status != http.StatusRequestTimeout || apiErr.Code != "cancelled" {
		t.Fatalf("cancel: got (%+v, %d)", apiErr, status)
	}
}

func TestFromErrorCanonicalPassthrough(t *testing.T) {
	in := &Error{Type: ErrRateLimit, Message: "slow down"}
	apiErr, status := FromError(fmt.Errorf("wrapped: %w", in), "req_9")
	if status != http.StatusTooManyRequests {
		t.Fatalf("status=%d, want 429", status)
	}
	if apiErr.RequestID != "req_9" {
		t.Fatalf("RequestID=%q, want req_9", apiErr.RequestID)
	}
	if in.RequestID != "" {
		t.Fatalf("FromError mutated the original error")
	}
}

func TestFromErrorLeadValidation(t *testing.T) {
	err := &leads.ValidationError{Field: "email", Message: "is required"}
	apiErr, status := FromError(err, "req_1")
	if status != http.StatusBadRequest || apiErr.Type != ErrInvalidRequest || apiErr.Param != "email" {
		t.Fatalf("got (%+v, %d)", apiErr, status)
	}
}

func TestFromErrorLeadStorage(t *testing.T) {
	err := &leads.StorageError{Op: "insert_contact", Err: errors.New("connection refused")}
	apiErr, status := FromError(err, "req_1")
	if status != http.StatusServiceUnavailable || apiErr.Type != ErrStorage {
		t.Fatalf("got (%+v, %d)", apiErr, status)
	}
	if apiErr.Code != "insert_contact" {
		t.Fatalf("Code=%q", apiErr.Code)
	}
}

func TestFromErrorAuth(t *testing.T) {
	apiErr, status := FromError(auth.ErrInvalidCredentials, "req_1")
	if status != http.StatusUnauthorized || apiErr.Type != ErrAuthentication {
		t.Fatalf("credentials: got (%+v, %d)", apiErr, status)
	}

	apiErr, status = FromError(auth.ErrPasswordMismatch, "req_1")
	if status != http.StatusBadRequest || apiErr.Param != "password" {
		t.Fatalf("mismatch: got (%+v, %d)", apiErr, status)
	}

	apiErr, status = FromError(auth.ErrEmailTaken, "req_1")
	if status != http.StatusConflict {
		t.Fatalf("taken: got (%+v, %d)", apiErr, status)
	}

	apiErr, status = FromError(&auth.ProviderError{Op: "authenticate", Err: errors.New("503")}, "req_1")
	if status != http.StatusBadGateway || apiErr.Type != ErrProvider {
		t.Fatalf("provider: got (%+v, %d)", apiErr, status)
	}
}

func TestStatusFromTypeMatchesFromError(t *testing.T) {
	// ErrAPI is the catch-all for local failures; both paths must agree on
	// 500 so unrelated endpoints never answer as if an upstream failed.
	if got := StatusFromType(ErrAPI); got != http.StatusInternalServerError {
		t.Fatalf("StatusFromType(ErrAPI)=%d, want 500", got)
	}
	_, status := FromError(errors.New("boom"), "req_1")
	if status != StatusFromType(ErrAPI) {
		t.Fatalf("FromError unknown=%d, StatusFromType=%d", status, StatusFromType(ErrAPI))
	}
}

func TestFromErrorUnknownDoesNotLeak(t *testing.T) {
	apiErr, status := FromError(errors.New("pq: secret table missing"), "req_1")
	if status != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", status)
	}
	if apiErr.Message != "internal error" {
		t.Fatalf("leaked message %q", apiErr.Message)
	}
}
