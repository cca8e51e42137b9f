package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/digitalemployee/site-gateway/pkg/gateway/apierror"
	"github.com/digitalemployee/site-gateway/pkg/gateway/mw"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := mw.RequestIDFrom(r.Context())
	apiErr, status := apierror.FromError(err, reqID)
	writeJSON(w, status, apierror.Envelope{Error: apiErr})
}

func writeAPIError(w http.ResponseWriter, r *http.Request, t apierror.ErrorType, message, param string) {
	reqID := mw.RequestIDFrom(r.Context())
	writeJSON(w, apierror.StatusFromType(t), apierror.Envelope{Error: &apierror.Error{
		Type:      t,
		Message:   message,
		Param:     param,
		RequestID: reqID,
	}})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeAPIError(w, r, apierror.ErrInvalidRequest, "method not allowed", "")
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeAPIError(w, r, apierror.ErrInvalidRequest, "request body is not valid JSON", "")
		return false
	}
	return true
}
