package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pollwave/pollwave/internal/models"
)

// Vote actions accepted by PATCH /api/v1/surveys/{id}.
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
	VoteReport  = "report"
)

// Sort directives for the like counter.
const (
	SortAscending  = "Ascending"
	SortDescending = "Descending"
)

type SurveyFilter struct {
	Category string
	Title    string
	// Vote orders results by like count when set to SortAscending or
	// SortDescending; anything else leaves insertion order.
	Vote string
}

type SurveyStore interface {
	AddSurvey(sv *models.Survey) error
	GetSurvey(id string) (*models.Survey, error)
	ListSurveys(f SurveyFilter) ([]*models.Survey, error)
	ListSurveysByOwner(email string) ([]*models.Survey, error)
	// LikeSurvey increments the like counter, records email in the
	// participant set and updates the last-voter slot in one atomic
	// step. It reports false when email is already a participant.
	LikeSurvey(id, email string) (bool, error)
	DislikeSurvey(id string) (bool, error)
	ReportSurvey(id string) (bool, error)
	UpdateSurveyStatus(id, status, feedback string, setFeedback bool) (bool, error)
	UpdateSurveyContent(id, title, description, category string) (bool, error)
	DeleteSurvey(id string) (bool, error)
	AddComment(c *models.Comment) error
	ListComments() ([]*models.Comment, error)
}

type SurveyService struct {
	store SurveyStore
	now   func() time.Time
	idGen func(n int) string
}

func NewSurveyService(store SurveyStore) *SurveyService {
	return &SurveyService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

func (s *SurveyService) Create(sv *models.Survey) (*models.Survey, error) {
	if sv == nil {
		return nil, NewInvalidError("survey required")
	}
	if strings.TrimSpace(sv.Title) == "" || strings.TrimSpace(sv.Category) == "" || strings.TrimSpace(sv.Description) == "" {
		return nil, NewInvalidError("title/category/description required")
	}
	sv.ID = s.idGen(8)
	sv.Like, sv.Dislike, sv.Report = 0, 0, 0
	sv.Participants = nil
	sv.ParticipantEmail = ""
	sv.CreatedAt = s.now()
	if err := s.store.AddSurvey(sv); err != nil {
		return nil, err
	}
	return sv, nil
}

func (s *SurveyService) List(f SurveyFilter) ([]*models.Survey, error) {
	return s.store.ListSurveys(f)
}

func (s *SurveyService) ListByOwner(email string) ([]*models.Survey, error) {
	return s.store.ListSurveysByOwner(email)
}

type VoteOutcome struct {
	AlreadyParticipated bool
}

// Vote applies a like, dislike or report from email to survey id. A
// caller already in the participant set short-circuits with no
// mutation, for every action. Only a like joins the set; dislike and
// report leave both the set and the last-voter slot untouched.
func (s *SurveyService) Vote(id, email, action string) (*VoteOutcome, error) {
	if strings.TrimSpace(email) == "" {
		return nil, NewInvalidError("participantEmail required")
	}
	switch action {
	case VoteLike, VoteDislike, VoteReport:
	default:
		return nil, NewInvalidError("unknown vote action")
	}
	sv, err := s.store.GetSurvey(id)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	if participated(sv, email) {
		return &VoteOutcome{AlreadyParticipated: true}, nil
	}
	switch action {
	case VoteLike:
		// Conditional at the store: a concurrent duplicate like
		// loses the update race instead of double counting.
		applied, err := s.store.LikeSurvey(id, email)
		if err != nil {
			return nil, err
		}
		if !applied {
			return &VoteOutcome{AlreadyParticipated: true}, nil
		}
	case VoteDislike:
		if _, err := s.store.DislikeSurvey(id); err != nil {
			return nil, err
		}
	case VoteReport:
		if _, err := s.store.ReportSurvey(id); err != nil {
			return nil, err
		}
	}
	return &VoteOutcome{}, nil
}

func participated(sv *models.Survey, email string) bool {
	if sv.ParticipantEmail != "" && strings.EqualFold(sv.ParticipantEmail, email) {
		return true
	}
	for _, p := range sv.Participants {
		if strings.EqualFold(p, email) {
			return true
		}
	}
	return false
}

// AdminUpdate sets the moderation status and, only when feedback is
// non-empty, the admin feedback. Previously stored feedback survives
// an update with empty feedback.
func (s *SurveyService) AdminUpdate(id, status, feedback string) error {
	ok, err := s.store.UpdateSurveyStatus(id, status, feedback, strings.TrimSpace(feedback) != "")
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("survey not found")
	}
	return nil
}

// SurveyorUpdate replaces exactly title, description and category.
func (s *SurveyService) SurveyorUpdate(id, title, description, category string) error {
	ok, err := s.store.UpdateSurveyContent(id, title, description, category)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("survey not found")
	}
	return nil
}

// AddComment appends a comment. The survey reference is stored as
// given; no existence check is made.
func (s *SurveyService) AddComment(c *models.Comment) (*models.Comment, error) {
	if c == nil {
		return nil, NewInvalidError("comment required")
	}
	c.ID = s.idGen(8)
	if c.Date == "" {
		c.Date = s.now().Format(time.RFC3339)
	}
	if err := s.store.AddComment(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *SurveyService) ListComments() ([]*models.Comment, error) {
	return s.store.ListComments()
}

func (s *SurveyService) Delete(id string) error {
	ok, err := s.store.DeleteSurvey(id)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("survey not found")
	}
	return nil
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
