package api

import (
	"encoding/json"
	"net/http"

	"github.com/pollwave/pollwave/internal/models"
	"github.com/pollwave/pollwave/internal/services"
)

// POST /create-payment-intent
func (rt *Router) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	secret, err := rt.payments.CreateIntent(req.Price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": secret})
}

// POST /payment — the submitted confirmation is checked against the
// processor before it is stored.
func (rt *Router) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var p models.Payment
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	stored, err := rt.payments.Record(&p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// GET /payment
func (rt *Router) handleListPayments(w http.ResponseWriter, _ *http.Request) {
	out, err := rt.payments.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
