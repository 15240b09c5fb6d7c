package api

import (
	"github.com/pollwave/pollwave/internal/models"
	"github.com/pollwave/pollwave/internal/services"
)

// Store is the persistence gateway over the five record collections.
// It is satisfied by the in-memory store in this package and by the
// SQLite store in internal/db.
type Store interface {
	services.UserStore
	services.SurveyStore
	services.PaymentStore

	AddReview(r *models.Review) error
	ListReviews() ([]*models.Review, error)

	CountUsers() (int, error)
	CountSurveys() (int, error)
	CountPayments() (int, error)
}
