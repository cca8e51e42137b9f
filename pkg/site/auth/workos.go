package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/workos/workos-go/v6/pkg/usermanagement"
	"github.com/workos/workos-go/v6/pkg/workos_errors"
)

// WorkOSProvider implements IdentityProvider on the WorkOS user management
// API.
type WorkOSProvider struct {
	client   *usermanagement.Client
	clientID string
}

func NewWorkOSProvider(apiKey, clientID string) *WorkOSProvider {
	return &WorkOSProvider{
		client:   usermanagement.NewClient(apiKey),
		clientID: clientID,
	}
}

func (p *WorkOSProvider) CreateUser(ctx context.Context, email, password, displayName string, kind AccountKind) (Session, error) {
	first, last := splitName(displayName)
	user, err := p.client.CreateUser(ctx, usermanagement.CreateUserOpts{
		Email:     email,
		Password:  password,
		FirstName: first,
		LastName:  last,
		Metadata:  map[string]string{"account_kind": string(kind)},
	})
	if err != nil {
		return Session{}, classify("create_user", err)
	}
	return Session{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: displayName,
		Role:        string(kind),
	}, nil
}

func (p *WorkOSProvider) Authenticate(ctx context.Context, email, password string) (Session, error) {
	resp, err := p.client.AuthenticateWithPassword(ctx, usermanagement.AuthenticateWithPasswordOpts{
		ClientID: p.clientID,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return Session{}, classify("authenticate", err)
	}
	return sessionFromUser(resp.User), nil
}

func (p *WorkOSProvider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := p.client.CreatePasswordReset(ctx, usermanagement.CreatePasswordResetOpts{
		Email: email,
	})
	if err != nil {
		return classify("create_password_reset", err)
	}
	return nil
}

func (p *WorkOSProvider) ResetPassword(ctx context.Context, token, newPassword string) (Session, error) {
	resp, err := p.client.ResetPassword(ctx, usermanagement.ResetPasswordOpts{
		Token:       token,
		NewPassword: newPassword,
	})
	if err != nil {
		return Session{}, classify("reset_password", err)
	}
	return sessionFromUser(resp.User), nil
}

func (p *WorkOSProvider) RevokeSession(ctx context.Context, sessionID string) error {
	err := p.client.RevokeSession(ctx, usermanagement.RevokeSessionOpts{
		SessionID: sessionID,
	})
	if err != nil {
		return classify("revoke_session", err)
	}
	return nil
}

func sessionFromUser(u usermanagement.User) Session {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	role := u.Metadata["account_kind"]
	if role == "" {
		role = string(KindBusiness)
	}
	return Session{ID: u.ID, Email: u.Email, DisplayName: name, Role: role}
}

// classify folds WorkOS HTTP failures into the package's error taxonomy.
func classify(op string, err error) error {
	var httpErr workos_errors.HTTPError
	if errors.As(err, &httpErr) {
		msg := strings.ToLower(httpErr.Message)
		switch {
		case httpErr.Code == http.StatusUnauthorized,
			httpErr.Code == http.StatusForbidden,
			strings.Contains(msg, "invalid credentials"):
			return ErrInvalidCredentials
		case httpErr.Code == http.StatusConflict,
			strings.Contains(msg, "already exists"):
			return ErrEmailTaken
		case httpErr.Code == http.StatusUnprocessableEntity && strings.Contains(msg, "password"):
			return ErrWeakPassword
		}
	}
	return &ProviderError{Op: op, Err: err}
}

func splitName(displayName string) (first, last string) {
	parts := strings.Fields(displayName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
