package handlers

import (
	"net/http"

	"github.com/digitalemployee/site-gateway/pkg/gateway/apierror"
	"github.com/digitalemployee/site-gateway/pkg/site/leads"
)

// LeadsHandler accepts contact-form submissions.
type LeadsHandler struct {
	Service *leads.Service
}

func (h *LeadsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if h.Service == nil {
		writeAPIError(w, r, apierror.ErrStorage, "lead capture is not configured", "")
		return
	}

	var contact leads.Contact
	if !decodeBody(w, r, &contact) {
		return
	}

	token := r.Header.Get("Idempotency-Key")
	if !h.Service.Begin(token) {
		writeAPIError(w, r, apierror.ErrInvalidRequest, "an identical submission is already in flight", "")
		return
	}
	defer h.Service.End(token)

	saved, err := h.Service.SubmitContact(r.Context(), contact)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// PartnersHandler accepts partner-program applications.
type PartnersHandler struct {
	Service *leads.Service
}

func (h *PartnersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if h.Service == nil {
		writeAPIError(w, r, apierror.ErrStorage, "lead capture is not configured", "")
		return
	}

	var partner leads.Partner
	if !decodeBody(w, r, &partner) {
		return
	}

	token := r.Header.Get("Idempotency-Key")
	if !h.Service.Begin(token) {
		writeAPIError(w, r, apierror.ErrInvalidRequest, "an identical submission is already in flight", "")
		return
	}
	defer h.Service.End(token)

	saved, err := h.Service.SubmitPartner(r.Context(), partner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}
