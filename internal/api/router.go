package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pollwave/pollwave/internal/middleware"
	"github.com/pollwave/pollwave/internal/services"
)

type Router struct {
	store    Store
	users    *services.UserService
	surveys  *services.SurveyService
	payments *services.PaymentService
}

func NewRouter(store Store, provider services.PaymentProvider) *Router {
	return &Router{
		store:    store,
		users:    services.NewUserService(store),
		surveys:  services.NewSurveyService(store),
		payments: services.NewPaymentService(store, provider),
	}
}

// Handler builds the route tree. Routes are grouped by auth level:
// public, bearer-token, and token+Admin.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("PollWave is running"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": "PollWave API"})
	})

	r.Post("/api/v1/jwt", rt.handleIssueToken)
	r.Post("/api/v1/users", rt.handleCreateUser)
	r.Get("/api/v1/review", rt.handleListReviews)
	r.Post("/api/v1/surveys", rt.handleCreateSurvey)
	r.Get("/api/v1/surveys", rt.handleListSurveys)
	r.Get("/api/v1/surveys/comments", rt.handleListComments)
	r.Get("/api/v1/surveys/{email}", rt.handleSurveysByOwner)
	r.Delete("/api/v1/surveys/{id}", rt.handleDeleteSurvey)
	r.Post("/create-payment-intent", rt.handleCreateIntent)

	adminOnly := middleware.RequireAdmin(rt.storedRole)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/users/role/{email}", rt.handleUserRole)
		r.Patch("/api/v1/users/{id}", rt.handleSetRoleByID)
		r.Patch("/api/v1/users", rt.handleSetRoleByEmail)
		r.Patch("/api/v1/surveys/{id}", rt.handleVote)
		r.Post("/api/v1/surveys/comments", rt.handleAddComment)
		r.Put("/api/v1/surveys/surveyor/{id}", rt.handleSurveyorUpdate)
		r.Post("/payment", rt.handleRecordPayment)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Get("/api/v1/users", rt.handleListUsers)
			r.Delete("/api/v1/users/{id}", rt.handleDeleteUser)
			r.Put("/api/v1/surveys/admin/{id}", rt.handleAdminUpdate)
			r.Get("/payment", rt.handleListPayments)
			r.Get("/api/v1/admin/stats", rt.handleAdminStats)
		})
	})

	return r
}

// storedRole is the role resolver handed to the admin gate. It reads
// the raw stored role, so only an exact "Admin" record passes.
func (rt *Router) storedRole(email string) (string, error) {
	u, err := rt.store.FindUserByEmail(email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", nil
	}
	return u.Role, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps ServiceError codes onto HTTP statuses. Anything
// unrecognized becomes a logged 500 instead of crashing the request.
func writeError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		writeJSON(w, statusForCode(se.Code), map[string]string{"message": se.Message})
		return
	}
	log.Printf("api: internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
}

func statusForCode(code services.ErrorCode) int {
	switch code {
	case services.ErrorInvalid:
		return http.StatusBadRequest
	case services.ErrorUnauthorized:
		return http.StatusUnauthorized
	case services.ErrorForbidden:
		return http.StatusForbidden
	case services.ErrorNotFound:
		return http.StatusNotFound
	case services.ErrorConflict:
		return http.StatusConflict
	case services.ErrorBadGateway:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
