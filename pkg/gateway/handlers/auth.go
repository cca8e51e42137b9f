package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/digitalemployee/site-gateway/pkg/gateway/apierror"
	"github.com/digitalemployee/site-gateway/pkg/gateway/sse"
	"github.com/digitalemployee/site-gateway/pkg/site/auth"
)

const authEventsPingInterval = 25 * time.Second

// AuthHandler bridges account operations to the identity provider.
type AuthHandler struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (h *AuthHandler) notConfigured(w http.ResponseWriter, r *http.Request) bool {
	if h.Service == nil {
		writeAPIError(w, r, apierror.ErrProvider, "identity provider is not configured", "")
		return true
	}
	return false
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || h.notConfigured(w, r) {
		return
	}
	var body struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
		AccountKind string `json:"account_kind"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	sess, err := h.Service.Register(r.Context(), body.Email, body.Password, body.DisplayName, auth.AccountKind(body.AccountKind))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || h.notConfigured(w, r) {
		return
	}
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	sess, err := h.Service.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || h.notConfigured(w, r) {
		return
	}
	var body struct {
		SessionID string `json:"session_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	// Sign-out always succeeds from the caller's point of view.
	h.Service.SignOut(r.Context(), body.SessionID)
	writeJSON(w, http.StatusOK, struct {
		SignedOut bool `json:"signed_out"`
	}{SignedOut: true})
}

func (h *AuthHandler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || h.notConfigured(w, r) {
		return
	}
	var body struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := h.Service.RequestPasswordReset(r.Context(), body.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Sent bool `json:"sent"`
	}{Sent: true})
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || h.notConfigured(w, r) {
		return
	}
	var body struct {
		Token           string `json:"token"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	sess, err := h.Service.UpdatePassword(r.Context(), body.Token, body.NewPassword, body.ConfirmPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Events streams session-change events over SSE until the client goes away.
func (h *AuthHandler) Events(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || h.notConfigured(w, r) {
		return
	}
	sw, err := sse.New(w)
	if err != nil {
		writeAPIError(w, r, apierror.ErrAPI, "streaming not supported", "")
		return
	}
	w.WriteHeader(http.StatusOK)

	events, cancel := h.Service.Broker().Subscribe()
	defer cancel()

	ping := time.NewTicker(authEventsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			if err := sw.Ping(); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := sw.Send("session_change", ev); err != nil {
				return
			}
		}
	}
}
