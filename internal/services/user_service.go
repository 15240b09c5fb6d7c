package services

import (
	"strings"
	"time"

	"github.com/pollwave/pollwave/internal/models"
)

type UserStore interface {
	FindUserByEmail(email string) (*models.User, error)
	AddUser(u *models.User) error
	ListUsers(role string) ([]*models.User, error)
	UpdateUserRoleByID(id, role string) (bool, error)
	UpdateUserRoleByEmail(email, role string) (bool, error)
	DeleteUser(id string) (bool, error)
}

type UserService struct {
	store UserStore
	now   func() time.Time
	idGen func(n int) string
}

func NewUserService(store UserStore) *UserService {
	return &UserService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

// Register creates the user unless the email is already taken. The
// second return reports whether a record was inserted; a repeat
// registration returns the stored record untouched.
func (s *UserService) Register(u *models.User) (*models.User, bool, error) {
	if u == nil || strings.TrimSpace(u.Email) == "" {
		return nil, false, NewInvalidError("email required")
	}
	existing, err := s.store.FindUserByEmail(u.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	u.ID = s.idGen(8)
	u.CreatedAt = s.now()
	if err := s.store.AddUser(u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// ResolveRole maps a stored role value onto the closed display set.
// Unknown values yield the empty string, meaning no elevated role.
func ResolveRole(role string) string {
	switch role {
	case models.RoleAdmin, models.RoleSurveyor, models.RoleProUser:
		return role
	}
	return ""
}

// Role resolves the display role for email. A missing user is not an
// error; it reads as an unelevated caller.
func (s *UserService) Role(email string) (string, error) {
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", nil
	}
	return ResolveRole(u.Role), nil
}

// List returns users, optionally filtered by role. Empty and "all"
// both mean no filter.
func (s *UserService) List(role string) ([]*models.User, error) {
	if role == "all" {
		role = ""
	}
	return s.store.ListUsers(role)
}

func (s *UserService) SetRoleByID(id, role string) error {
	if strings.TrimSpace(role) == "" {
		return NewInvalidError("role required")
	}
	ok, err := s.store.UpdateUserRoleByID(id, role)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("user not found")
	}
	return nil
}

func (s *UserService) SetRoleByEmail(email, role string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(role) == "" {
		return NewInvalidError("email/role required")
	}
	ok, err := s.store.UpdateUserRoleByEmail(email, role)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("user not found")
	}
	return nil
}

func (s *UserService) Delete(id string) error {
	ok, err := s.store.DeleteUser(id)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("user not found")
	}
	return nil
}
