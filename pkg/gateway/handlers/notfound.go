package handlers

import (
	"net/http"

	"github.com/digitalemployee/site-gateway/pkg/gateway/apierror"
)

type NotFoundHandler struct{}

func (h NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeAPIError(w, r, apierror.ErrNotFound, "not found", "")
}
