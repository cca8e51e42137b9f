package handlers

import (
	"net/http"
	"strconv"

	"github.com/digitalemployee/site-gateway/pkg/gateway/apierror"
	"github.com/digitalemployee/site-gateway/pkg/site/roi"
)

// TiersHandler serves the static pricing catalog.
type TiersHandler struct{}

func (h TiersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Tiers []roi.Tier `json:"tiers"`
	}{Tiers: roi.Tiers()})
}

// EstimateHandler runs the savings calculator.
type EstimateHandler struct{}

func (h EstimateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()

	staff, err := strconv.Atoi(q.Get("staff"))
	if err != nil {
		writeAPIError(w, r, apierror.ErrInvalidRequest, "staff must be an integer", "staff")
		return
	}
	salary, err := strconv.ParseFloat(q.Get("salary"), 64)
	if err != nil {
		writeAPIError(w, r, apierror.ErrInvalidRequest, "salary must be a number", "salary")
		return
	}
	tierID := q.Get("tier")
	if tierID == "" {
		writeAPIError(w, r, apierror.ErrInvalidRequest, "tier is required", "tier")
		return
	}

	est, err := roi.Calculate(staff, salary, tierID)
	if err != nil {
		writeAPIError(w, r, apierror.ErrInvalidRequest, err.Error(), "tier")
		return
	}
	writeJSON(w, http.StatusOK, est)
}
