package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pollwave/pollwave/internal/middleware"
	"github.com/pollwave/pollwave/internal/models"
	"github.com/pollwave/pollwave/internal/services"
)

// POST /api/v1/jwt
func (rt *Router) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, services.NewInvalidError("email required"))
		return
	}
	token, err := middleware.SignToken(req.Email, middleware.TokenTTL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// POST /api/v1/users — idempotent on email.
func (rt *Router) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	stored, created, err := rt.users.Register(&u)
	if err != nil {
		writeError(w, err)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, map[string]string{"message": "User already Exist"})
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// GET /users/role/{email} — the caller may only ask about itself.
func (rt *Router) handleUserRole(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	caller, _ := middleware.EmailFromContext(r.Context())
	if !strings.EqualFold(email, caller) {
		writeError(w, services.NewForbiddenError("forbidden access"))
		return
	}
	role, err := rt.users.Role(email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userRole": role})
}

// GET /api/v1/users?role=
func (rt *Router) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := rt.users.List(r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// PATCH /api/v1/users/{id}
func (rt *Router) handleSetRoleByID(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	if err := rt.users.SetRoleByID(chi.URLParam(r, "id"), req.Role); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// PATCH /api/v1/users
func (rt *Router) handleSetRoleByEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	if err := rt.users.SetRoleByEmail(req.Email, req.Role); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// DELETE /api/v1/users/{id}
func (rt *Router) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := rt.users.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GET /api/v1/review
func (rt *Router) handleListReviews(w http.ResponseWriter, _ *http.Request) {
	reviews, err := rt.store.ListReviews()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// GET /api/v1/admin/stats
func (rt *Router) handleAdminStats(w http.ResponseWriter, _ *http.Request) {
	users, err := rt.store.CountUsers()
	if err != nil {
		writeError(w, err)
		return
	}
	surveys, err := rt.store.CountSurveys()
	if err != nil {
		writeError(w, err)
		return
	}
	payments, err := rt.store.CountPayments()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"users":    users,
		"surveys":  surveys,
		"payments": payments,
	})
}
