package handlers

import (
	"net/http"

	"github.com/digitalemployee/site-gateway/pkg/site/nav"
)

// NavHandler resolves URL fragments for the site shell.
type NavHandler struct{}

func (h NavHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	fragment := r.URL.Query().Get("fragment")
	resp := struct {
		Page     string `json:"page"`
		Recovery bool   `json:"recovery"`
	}{
		Page:     string(nav.Resolve(fragment)),
		Recovery: nav.IsRecoveryFragment(fragment),
	}
	writeJSON(w, http.StatusOK, resp)
}
