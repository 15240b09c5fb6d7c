package api

import (
	"sort"
	"strings"
	"sync"

	"github.com/pollwave/pollwave/internal/models"
	"github.com/pollwave/pollwave/internal/services"
)

// memoryStore keeps all collections in process memory. It backs the
// tests and runs the server when no SQLite path is configured.
type memoryStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User // keyed by lowercased email
	surveys  map[string]*models.Survey
	reviews  []*models.Review
	comments []*models.Comment
	payments []*models.Payment
}

func NewMemoryStore() Store {
	return &memoryStore{
		users:   map[string]*models.User{},
		surveys: map[string]*models.Survey{},
	}
}

func (s *memoryStore) FindUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.users[strings.ToLower(email)]
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memoryStore) AddUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[strings.ToLower(u.Email)] = &cp
	return nil
}

func (s *memoryStore) ListUsers(role string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.User{}
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *memoryStore) UpdateUserRoleByID(id, role string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.Role = role
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) UpdateUserRoleByEmail(email, role string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.users[strings.ToLower(email)]; u != nil {
		u.Role = role
		return true, nil
	}
	return false, nil
}

func (s *memoryStore) DeleteUser(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, u := range s.users {
		if u.ID == id {
			delete(s.users, key)
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) AddSurvey(sv *models.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneSurvey(sv)
	s.surveys[sv.ID] = cp
	return nil
}

func (s *memoryStore) GetSurvey(id string) (*models.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sv := s.surveys[id]
	if sv == nil {
		return nil, nil
	}
	return cloneSurvey(sv), nil
}

func (s *memoryStore) ListSurveys(f services.SurveyFilter) ([]*models.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Survey{}
	for _, sv := range s.surveys {
		if f.Category != "" && sv.Category != f.Category {
			continue
		}
		if f.Title != "" && sv.Title != f.Title {
			continue
		}
		out = append(out, cloneSurvey(sv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	switch f.Vote {
	case services.SortAscending:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Like < out[j].Like })
	case services.SortDescending:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Like > out[j].Like })
	}
	return out, nil
}

func (s *memoryStore) ListSurveysByOwner(email string) ([]*models.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Survey{}
	for _, sv := range s.surveys {
		if strings.EqualFold(sv.Email, email) {
			out = append(out, cloneSurvey(sv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LikeSurvey holds the write lock across the membership check and the
// increment, so a duplicate like can never double count.
func (s *memoryStore) LikeSurvey(id, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv := s.surveys[id]
	if sv == nil {
		return false, nil
	}
	for _, p := range sv.Participants {
		if strings.EqualFold(p, email) {
			return false, nil
		}
	}
	sv.Like++
	sv.Participants = append(sv.Participants, email)
	sv.ParticipantEmail = email
	return true, nil
}

func (s *memoryStore) DislikeSurvey(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv := s.surveys[id]
	if sv == nil {
		return false, nil
	}
	sv.Dislike++
	return true, nil
}

func (s *memoryStore) ReportSurvey(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv := s.surveys[id]
	if sv == nil {
		return false, nil
	}
	sv.Report++
	return true, nil
}

func (s *memoryStore) UpdateSurveyStatus(id, status, feedback string, setFeedback bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv := s.surveys[id]
	if sv == nil {
		return false, nil
	}
	sv.Status = status
	if setFeedback {
		sv.AdminFeedback = feedback
	}
	return true, nil
}

func (s *memoryStore) UpdateSurveyContent(id, title, description, category string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv := s.surveys[id]
	if sv == nil {
		return false, nil
	}
	sv.Title = title
	sv.Description = description
	sv.Category = category
	return true, nil
}

func (s *memoryStore) DeleteSurvey(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveys[id]; !ok {
		return false, nil
	}
	delete(s.surveys, id)
	return true, nil
}

func (s *memoryStore) AddComment(c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comments = append(s.comments, &cp)
	return nil
}

func (s *memoryStore) ListComments() ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memoryStore) AddReview(r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reviews = append(s.reviews, &cp)
	return nil
}

func (s *memoryStore) ListReviews() ([]*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memoryStore) AddPayment(p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.payments = append(s.payments, &cp)
	return nil
}

func (s *memoryStore) ListPayments() ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memoryStore) CountUsers() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *memoryStore) CountSurveys() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.surveys), nil
}

func (s *memoryStore) CountPayments() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments), nil
}

func cloneSurvey(sv *models.Survey) *models.Survey {
	cp := *sv
	cp.Participants = append([]string(nil), sv.Participants...)
	return &cp
}

var _ Store = (*memoryStore)(nil)
