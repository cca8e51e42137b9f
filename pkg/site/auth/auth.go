// Package auth bridges the site's account flows onto a hosted identity
// provider and broadcasts session changes to subscribers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const minPasswordLen = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password rejected by identity provider")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", minPasswordLen)
	ErrEmailTaken         = errors.New("email already registered")
)

// ProviderError wraps an identity provider failure that is not a credential
// or validation problem.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AccountKind distinguishes the two registration paths.
type AccountKind string

const (
	KindBusiness AccountKind = "business"
	KindPartner  AccountKind = "partner"
)

// Session is the snapshot of an authenticated session carried on events and
// returned by sign-in operations.
type Session struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Event is one session-change notification. Session is nil for sign-out.
// PasswordRecovery marks events that must force navigation to the
// reset-password page.
type Event struct {
	Session          *Session `json:"session"`
	PasswordRecovery bool     `json:"password_recovery"`
}

// IdentityProvider is the hosted identity backend.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string, kind AccountKind) (Session, error)
	Authenticate(ctx context.Context, email, password string) (Session, error)
	SendPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) (Session, error)
	RevokeSession(ctx context.Context, sessionID string) error
}

type Service struct {
	provider IdentityProvider
	broker   *Broker
	logger   *slog.Logger
}

func NewService(provider IdentityProvider, broker *Broker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if broker == nil {
		broker = NewBroker()
	}
	return &Service{provider: provider, broker: broker, logger: logger}
}

// Broker exposes the session-change stream for subscribers.
func (s *Service) Broker() *Broker { return s.broker }

// Register creates an account and signs the new user in. Local validation
// runs before any provider call.
func (s *Service) Register(ctx context.Context, email, password, displayName string, kind AccountKind) (Session, error) {
	if err := validateEmail(email); err != nil {
		return Session{}, err
	}
	if len(password) < minPasswordLen {
		return Session{}, ErrPasswordTooShort
	}
	if kind != KindBusiness && kind != KindPartner {
		kind = KindBusiness
	}
	sess, err := s.provider.CreateUser(ctx, email, password, displayName, kind)
	if err != nil {
		return Session{}, err
	}
	s.broker.Publish(Event{Session: &sess})
	return sess, nil
}

// Authenticate verifies credentials and publishes the new session.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Session, error) {
	if err := validateEmail(email); err != nil {
		return Session{}, err
	}
	if password == "" {
		return Session{}, ErrInvalidCredentials
	}
	sess, err := s.provider.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	s.broker.Publish(Event{Session: &sess})
	return sess, nil
}

// RequestPasswordReset asks the provider to mail a recovery link.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	return s.provider.SendPasswordReset(ctx, email)
}

// UpdatePassword completes a recovery flow. The confirm check and the
// length check run before the provider is contacted, so a typo fails fast
// with no network round trip.
func (s *Service) UpdatePassword(ctx context.Context, token, newPassword, confirm string) (Session, error) {
	if newPassword != confirm {
		return Session{}, ErrPasswordMismatch
	}
	if len(newPassword) < minPasswordLen {
		return Session{}, ErrPasswordTooShort
	}
	sess, err := s.provider.ResetPassword(ctx, token, newPassword)
	if err != nil {
		return Session{}, err
	}
	s.broker.Publish(Event{Session: &sess})
	return sess, nil
}

// SignOut publishes the signed-out state immediately; there is no
// confirmation step. Provider-side revocation is best effort.
func (s *Service) SignOut(ctx context.Context, sessionID string) {
	s.broker.Publish(Event{Session: nil})
	if sessionID == "" {
		return
	}
	if err := s.provider.RevokeSession(ctx, sessionID); err != nil {
		s.logger.Warn("session revocation failed", "error", err)
	}
}

// PublishRecovery broadcasts a password-recovery event. Subscribers route it
// to the reset-password page.
func (s *Service) PublishRecovery() {
	s.broker.Publish(Event{PasswordRecovery: true})
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidCredentials
	}
	return nil
}
