package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pollwave/pollwave/internal/models"
	"github.com/pollwave/pollwave/internal/services"
)

// POST /api/v1/surveys
func (rt *Router) handleCreateSurvey(w http.ResponseWriter, r *http.Request) {
	var sv models.Survey
	if err := json.NewDecoder(r.Body).Decode(&sv); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	created, err := rt.surveys.Create(&sv)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// GET /api/v1/surveys?category=&title=&vote=
func (rt *Router) handleListSurveys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := rt.surveys.List(services.SurveyFilter{
		Category: q.Get("category"),
		Title:    q.Get("title"),
		Vote:     q.Get("vote"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/v1/surveys/{email}
func (rt *Router) handleSurveysByOwner(w http.ResponseWriter, r *http.Request) {
	out, err := rt.surveys.ListByOwner(chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// PATCH /api/v1/surveys/{id} — cast a vote. The body carries the
// action in "status", matching the original client contract.
func (rt *Router) handleVote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status           string `json:"status"`
		ParticipantEmail string `json:"participantEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	outcome, err := rt.surveys.Vote(chi.URLParam(r, "id"), req.ParticipantEmail, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	if outcome.AlreadyParticipated {
		writeJSON(w, http.StatusOK, map[string]string{"message": "You have already Participated in this survey"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// PUT /api/v1/surveys/admin/{id}
func (rt *Router) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status  string `json:"status"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	if err := rt.surveys.AdminUpdate(chi.URLParam(r, "id"), req.Status, req.Comment); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// PUT /api/v1/surveys/surveyor/{id}
func (rt *Router) handleSurveyorUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	if err := rt.surveys.SurveyorUpdate(chi.URLParam(r, "id"), req.Title, req.Description, req.Category); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /api/v1/surveys/comments
func (rt *Router) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID        string `json:"id"`
		UserName  string `json:"userName"`
		UserImage string `json:"userImage"`
		Comment   string `json:"comment"`
		Date      string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	created, err := rt.surveys.AddComment(&models.Comment{
		SurveyID:     req.ID,
		UserName:     req.UserName,
		UserImage:    req.UserImage,
		UserFeedback: req.Comment,
		Date:         req.Date,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// GET /api/v1/surveys/comments
func (rt *Router) handleListComments(w http.ResponseWriter, _ *http.Request) {
	out, err := rt.surveys.ListComments()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DELETE /api/v1/surveys/{id}
func (rt *Router) handleDeleteSurvey(w http.ResponseWriter, r *http.Request) {
	if err := rt.surveys.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
