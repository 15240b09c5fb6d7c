package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pollwave/pollwave/internal/api"
	"github.com/pollwave/pollwave/internal/models"
	"github.com/pollwave/pollwave/internal/services"
)

// SQLiteStore persists the five collections in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeParticipants(ps []string) string {
	if len(ps) == 0 {
		return "[]"
	}
	b, err := json.Marshal(ps)
	if err != nil {
		log.Printf("sqlite store: encode participants: %v", err)
		return "[]"
	}
	return string(b)
}

func decodeParticipants(s string) []string {
	if s == "" || s == "[]" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		log.Printf("sqlite store: decode participants: %v", err)
		return nil
	}
	return out
}

// --- users ---

func (s *SQLiteStore) FindUserByEmail(email string) (*models.User, error) {
	row := s.db.QueryRow(
		`SELECT id, name, email, photo_url, role, created_at FROM users WHERE email = ? COLLATE NOCASE`,
		email,
	)
	var u models.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PhotoURL, &u.Role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = decodeTime(createdAt)
	return &u, nil
}

func (s *SQLiteStore) AddUser(u *models.User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, email, photo_url, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PhotoURL, u.Role, encodeTime(u.CreatedAt),
	)
	return err
}

func (s *SQLiteStore) ListUsers(role string) ([]*models.User, error) {
	query := `SELECT id, name, email, photo_url, role, created_at FROM users`
	args := []any{}
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, role)
	}
	query += ` ORDER BY email`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.User{}
	for rows.Next() {
		var u models.User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PhotoURL, &u.Role, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt = decodeTime(createdAt)
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateUserRoleByID(id, role string) (bool, error) {
	res, err := s.db.Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id)
	return affected(res, err)
}

func (s *SQLiteStore) UpdateUserRoleByEmail(email, role string) (bool, error) {
	res, err := s.db.Exec(`UPDATE users SET role = ? WHERE email = ? COLLATE NOCASE`, role, email)
	return affected(res, err)
}

func (s *SQLiteStore) DeleteUser(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	return affected(res, err)
}

// --- surveys ---

const surveyColumns = `id, title, category, description, email, like_count, dislike_count,
	report_count, participant_email, participants, status, admin_feedback, created_at`

func (s *SQLiteStore) AddSurvey(sv *models.Survey) error {
	_, err := s.db.Exec(
		`INSERT INTO surveys (`+surveyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.Title, sv.Category, sv.Description, sv.Email,
		sv.Like, sv.Dislike, sv.Report, sv.ParticipantEmail,
		encodeParticipants(sv.Participants), sv.Status, sv.AdminFeedback,
		encodeTime(sv.CreatedAt),
	)
	return err
}

func scanSurvey(scan func(dest ...any) error) (*models.Survey, error) {
	var sv models.Survey
	var participants, createdAt string
	err := scan(
		&sv.ID, &sv.Title, &sv.Category, &sv.Description, &sv.Email,
		&sv.Like, &sv.Dislike, &sv.Report, &sv.ParticipantEmail,
		&participants, &sv.Status, &sv.AdminFeedback, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	sv.Participants = decodeParticipants(participants)
	sv.CreatedAt = decodeTime(createdAt)
	return &sv, nil
}

func (s *SQLiteStore) GetSurvey(id string) (*models.Survey, error) {
	row := s.db.QueryRow(`SELECT `+surveyColumns+` FROM surveys WHERE id = ?`, id)
	sv, err := scanSurvey(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sv, err
}

func (s *SQLiteStore) ListSurveys(f services.SurveyFilter) ([]*models.Survey, error) {
	query := `SELECT ` + surveyColumns + ` FROM surveys`
	args := []any{}
	where := ""
	if f.Category != "" {
		where = ` WHERE category = ?`
		args = append(args, f.Category)
	}
	if f.Title != "" {
		if where == "" {
			where = ` WHERE title = ?`
		} else {
			where += ` AND title = ?`
		}
		args = append(args, f.Title)
	}
	query += where
	switch f.Vote {
	case services.SortAscending:
		query += ` ORDER BY like_count ASC, id`
	case services.SortDescending:
		query += ` ORDER BY like_count DESC, id`
	default:
		query += ` ORDER BY id`
	}
	return s.querySurveys(query, args...)
}

func (s *SQLiteStore) ListSurveysByOwner(email string) ([]*models.Survey, error) {
	return s.querySurveys(
		`SELECT `+surveyColumns+` FROM surveys WHERE email = ? COLLATE NOCASE ORDER BY id`,
		email,
	)
}

func (s *SQLiteStore) querySurveys(query string, args ...any) ([]*models.Survey, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Survey{}
	for rows.Next() {
		sv, err := scanSurvey(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

// LikeSurvey runs the membership check and the increment as a single
// UPDATE, so concurrent duplicate likes cannot both commit.
func (s *SQLiteStore) LikeSurvey(id, email string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE surveys
		 SET like_count = like_count + 1,
		     participant_email = ?,
		     participants = json_insert(participants, '$[#]', ?)
		 WHERE id = ?
		   AND NOT EXISTS (
		     SELECT 1 FROM json_each(surveys.participants)
		     WHERE lower(json_each.value) = lower(?)
		   )`,
		email, email, id, email,
	)
	return affected(res, err)
}

func (s *SQLiteStore) DislikeSurvey(id string) (bool, error) {
	res, err := s.db.Exec(`UPDATE surveys SET dislike_count = dislike_count + 1 WHERE id = ?`, id)
	return affected(res, err)
}

func (s *SQLiteStore) ReportSurvey(id string) (bool, error) {
	res, err := s.db.Exec(`UPDATE surveys SET report_count = report_count + 1 WHERE id = ?`, id)
	return affected(res, err)
}

func (s *SQLiteStore) UpdateSurveyStatus(id, status, feedback string, setFeedback bool) (bool, error) {
	var res sql.Result
	var err error
	if setFeedback {
		res, err = s.db.Exec(`UPDATE surveys SET status = ?, admin_feedback = ? WHERE id = ?`, status, feedback, id)
	} else {
		res, err = s.db.Exec(`UPDATE surveys SET status = ? WHERE id = ?`, status, id)
	}
	return affected(res, err)
}

func (s *SQLiteStore) UpdateSurveyContent(id, title, description, category string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE surveys SET title = ?, description = ?, category = ? WHERE id = ?`,
		title, description, category, id,
	)
	return affected(res, err)
}

func (s *SQLiteStore) DeleteSurvey(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM surveys WHERE id = ?`, id)
	return affected(res, err)
}

// --- comments ---

func (s *SQLiteStore) AddComment(c *models.Comment) error {
	_, err := s.db.Exec(
		`INSERT INTO comments (id, survey_id, user_name, user_image, user_feedback, date) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.SurveyID, c.UserName, c.UserImage, c.UserFeedback, c.Date,
	)
	return err
}

func (s *SQLiteStore) ListComments() ([]*models.Comment, error) {
	rows, err := s.db.Query(`SELECT id, survey_id, user_name, user_image, user_feedback, date FROM comments ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.SurveyID, &c.UserName, &c.UserImage, &c.UserFeedback, &c.Date); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// --- reviews ---

func (s *SQLiteStore) AddReview(r *models.Review) error {
	_, err := s.db.Exec(
		`INSERT INTO reviews (id, name, image, review, rating) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Image, r.Text, r.Rating,
	)
	return err
}

func (s *SQLiteStore) ListReviews() ([]*models.Review, error) {
	rows, err := s.db.Query(`SELECT id, name, image, review, rating FROM reviews ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Review{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.Name, &r.Image, &r.Text, &r.Rating); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// --- payments ---

func (s *SQLiteStore) AddPayment(p *models.Payment) error {
	_, err := s.db.Exec(
		`INSERT INTO payments (id, email, price, currency, transaction_id, date) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.Price, p.Currency, p.TransactionID, encodeTime(p.Date),
	)
	return err
}

func (s *SQLiteStore) ListPayments() ([]*models.Payment, error) {
	rows, err := s.db.Query(`SELECT id, email, price, currency, transaction_id, date FROM payments ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Payment{}
	for rows.Next() {
		var p models.Payment
		var date string
		if err := rows.Scan(&p.ID, &p.Email, &p.Price, &p.Currency, &p.TransactionID, &date); err != nil {
			return nil, err
		}
		p.Date = decodeTime(date)
		out = append(out, &p)
	}
	return out, rows.Err()
}

// --- counts ---

func (s *SQLiteStore) CountUsers() (int, error)    { return s.count("users") }
func (s *SQLiteStore) CountSurveys() (int, error)  { return s.count("surveys") }
func (s *SQLiteStore) CountPayments() (int, error) { return s.count("payments") }

func (s *SQLiteStore) count(table string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ api.Store = (*SQLiteStore)(nil)
