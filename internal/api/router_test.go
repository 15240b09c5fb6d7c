package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pollwave/pollwave/internal/middleware"
	"github.com/pollwave/pollwave/internal/models"
	"github.com/pollwave/pollwave/internal/services"
)

type fakeProvider struct {
	createdAmount int64
	intents       map[string]*services.IntentStatus
	fail          bool
}

func (p *fakeProvider) CreateIntent(amountMinor int64, currency string) (string, error) {
	if p.fail {
		return "", errors.New("provider unavailable")
	}
	p.createdAmount = amountMinor
	return "cs_test_secret", nil
}

func (p *fakeProvider) GetIntent(id string) (*services.IntentStatus, error) {
	if p.fail {
		return nil, errors.New("provider unavailable")
	}
	return p.intents[id], nil
}

func newTestHandler() (http.Handler, Store, *fakeProvider) {
	store := NewMemoryStore()
	provider := &fakeProvider{intents: map[string]*services.IntentStatus{}}
	return NewRouter(store, provider).Handler(), store, provider
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("decode response for %s %s: %v", method, path, err)
		}
	}
	return rec
}

func tokenFor(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	rec := doJSON(t, h, http.MethodPost, "/api/v1/jwt", "", map[string]string{"email": email}, &resp)
	if rec.Code != http.StatusOK || resp.Token == "" {
		t.Fatalf("token request failed: status %d body %s", rec.Code, rec.Body.String())
	}
	return resp.Token
}

func TestTokenAndRoleFlow(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/users", "", map[string]string{"email": "a@x.com", "name": "A"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("create user: status %d", rec.Code)
	}

	token := tokenFor(t, h, "a@x.com")

	var roleResp struct {
		UserRole string `json:"userRole"`
	}
	rec = doJSON(t, h, http.MethodGet, "/users/role/a@x.com", token, nil, &roleResp)
	if rec.Code != http.StatusOK {
		t.Fatalf("role lookup: status %d body %s", rec.Code, rec.Body.String())
	}
	if roleResp.UserRole != "" {
		t.Fatalf("userRole = %q for unelevated user, want empty", roleResp.UserRole)
	}
}

func TestRoleLookupRejectsOtherCaller(t *testing.T) {
	h, _, _ := newTestHandler()
	token := tokenFor(t, h, "a@x.com")
	rec := doJSON(t, h, http.MethodGet, "/users/role/b@x.com", token, nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAuthErrorSplit(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodGet, "/users/role/a@x.com", "", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing credential: status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/users/role/a@x.com", "garbage-token", nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("invalid credential: status = %d, want 403", rec.Code)
	}
}

func TestCreateUserIsIdempotent(t *testing.T) {
	h, store, _ := newTestHandler()

	doJSON(t, h, http.MethodPost, "/api/v1/users", "", map[string]string{"email": "a@x.com", "role": "Surveyor"}, nil)

	var resp struct {
		Message string `json:"message"`
	}
	rec := doJSON(t, h, http.MethodPost, "/api/v1/users", "", map[string]string{"email": "a@x.com", "role": "Admin"}, &resp)
	if rec.Code != http.StatusOK || resp.Message != "User already Exist" {
		t.Fatalf("repeat create: status %d body %s", rec.Code, rec.Body.String())
	}

	u, _ := store.FindUserByEmail("a@x.com")
	if u.Role != "Surveyor" {
		t.Fatalf("stored role changed to %q", u.Role)
	}
}

func TestAdminGate(t *testing.T) {
	h, store, _ := newTestHandler()
	_ = store.AddUser(&models.User{ID: "u1", Email: "admin@x.com", Role: "Admin"})
	_ = store.AddUser(&models.User{ID: "u2", Email: "pro@x.com", Role: "Pro User"})

	proToken := tokenFor(t, h, "pro@x.com")
	rec := doJSON(t, h, http.MethodGet, "/api/v1/users", proToken, nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin list: status = %d, want 403", rec.Code)
	}

	adminToken := tokenFor(t, h, "admin@x.com")
	var users []*models.User
	rec = doJSON(t, h, http.MethodGet, "/api/v1/users?role=all", adminToken, nil, &users)
	if rec.Code != http.StatusOK || len(users) != 2 {
		t.Fatalf("admin list: status %d users %d", rec.Code, len(users))
	}

	var filtered []*models.User
	doJSON(t, h, http.MethodGet, "/api/v1/users?role=Pro+User", adminToken, nil, &filtered)
	if len(filtered) != 1 || filtered[0].Email != "pro@x.com" {
		t.Fatalf("role filter returned %+v", filtered)
	}
}

func TestSurveyLifecycle(t *testing.T) {
	h, store, _ := newTestHandler()
	_ = store.AddUser(&models.User{ID: "u1", Email: "admin@x.com", Role: "Admin"})
	adminToken := tokenFor(t, h, "admin@x.com")
	ownerToken := tokenFor(t, h, "owner@x.com")

	var created models.Survey
	rec := doJSON(t, h, http.MethodPost, "/api/v1/surveys", "", models.Survey{
		Title: "Tabs or spaces", Category: "tech", Description: "pick one", Email: "owner@x.com",
	}, &created)
	if rec.Code != http.StatusOK || created.ID == "" {
		t.Fatalf("create survey: status %d body %s", rec.Code, rec.Body.String())
	}

	var byOwner []*models.Survey
	doJSON(t, h, http.MethodGet, "/api/v1/surveys/owner@x.com", "", nil, &byOwner)
	if len(byOwner) != 1 {
		t.Fatalf("owner listing returned %d surveys", len(byOwner))
	}

	rec = doJSON(t, h, http.MethodPut, "/api/v1/surveys/surveyor/"+created.ID, ownerToken, map[string]string{
		"title": "Spaces, obviously", "description": "settled", "category": "tech",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("surveyor update: status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPut, "/api/v1/surveys/admin/"+created.ID, adminToken, map[string]string{
		"status": "publish", "comment": "approved",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin update: status %d", rec.Code)
	}

	sv, _ := store.GetSurvey(created.ID)
	if sv.Title != "Spaces, obviously" || sv.Status != "publish" || sv.AdminFeedback != "approved" {
		t.Fatalf("updates not applied: %+v", sv)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/surveys/"+created.ID, "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	if sv, _ := store.GetSurvey(created.ID); sv != nil {
		t.Fatal("survey still present after delete")
	}
}

func TestSurveyListSortsByLikes(t *testing.T) {
	h, store, _ := newTestHandler()
	seed := func(id string, likes int) {
		_ = store.AddSurvey(&models.Survey{ID: id, Title: "t" + id, Category: "tech", Description: "d", Like: likes})
	}
	seed("a", 2)
	seed("b", 5)
	seed("c", 1)

	var out []*models.Survey
	doJSON(t, h, http.MethodGet, "/api/v1/surveys?vote=Descending", "", nil, &out)
	if len(out) != 3 || out[0].ID != "b" || out[2].ID != "c" {
		t.Fatalf("descending order wrong: %+v", out)
	}

	out = nil
	doJSON(t, h, http.MethodGet, "/api/v1/surveys?vote=Ascending", "", nil, &out)
	if len(out) != 3 || out[0].ID != "c" || out[2].ID != "b" {
		t.Fatalf("ascending order wrong: %+v", out)
	}
}

func TestVoteEndpoint(t *testing.T) {
	h, store, _ := newTestHandler()
	_ = store.AddSurvey(&models.Survey{ID: "s1", Title: "t", Category: "c", Description: "d"})
	token := tokenFor(t, h, "p1@x.com")

	vote := func(action string) *httptest.ResponseRecorder {
		return doJSON(t, h, http.MethodPatch, "/api/v1/surveys/s1", token, map[string]string{
			"status": action, "participantEmail": "p1@x.com",
		}, nil)
	}

	if rec := vote("like"); rec.Code != http.StatusOK {
		t.Fatalf("first like: status %d", rec.Code)
	}
	rec := vote("like")
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat like: status %d", rec.Code)
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode repeat response: %v", err)
	}
	if resp.Message != "You have already Participated in this survey" {
		t.Fatalf("repeat message = %q", resp.Message)
	}

	sv, _ := store.GetSurvey("s1")
	if sv.Like != 1 {
		t.Fatalf("like counter = %d, want 1", sv.Like)
	}

	rec = doJSON(t, h, http.MethodPatch, "/api/v1/surveys/missing", token, map[string]string{
		"status": "like", "participantEmail": "p1@x.com",
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing survey vote: status %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPatch, "/api/v1/surveys/s1", "", map[string]string{
		"status": "like", "participantEmail": "p2@x.com",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated vote: status %d, want 401", rec.Code)
	}
}

func TestCommentRoutes(t *testing.T) {
	h, _, _ := newTestHandler()
	token := tokenFor(t, h, "c@x.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/surveys/comments", token, map[string]string{
		"id": "s1", "userName": "Casey", "comment": "great poll", "date": "2024-03-01",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("add comment: status %d", rec.Code)
	}

	var comments []*models.Comment
	doJSON(t, h, http.MethodGet, "/api/v1/surveys/comments", "", nil, &comments)
	if len(comments) != 1 || comments[0].UserFeedback != "great poll" || comments[0].SurveyID != "s1" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
}

func TestPaymentFlow(t *testing.T) {
	h, store, provider := newTestHandler()
	_ = store.AddUser(&models.User{ID: "u1", Email: "admin@x.com", Role: "Admin"})
	provider.intents["pi_ok"] = &services.IntentStatus{Amount: 1999, Currency: "usd", Succeeded: true}
	provider.intents["pi_open"] = &services.IntentStatus{Amount: 1999, Currency: "usd", Succeeded: false}

	var intentResp struct {
		ClientSecret string `json:"clientSecret"`
	}
	rec := doJSON(t, h, http.MethodPost, "/create-payment-intent", "", map[string]float64{"price": 19.999}, &intentResp)
	if rec.Code != http.StatusOK || intentResp.ClientSecret == "" {
		t.Fatalf("create intent: status %d body %s", rec.Code, rec.Body.String())
	}
	if provider.createdAmount != 1999 {
		t.Fatalf("intent amount = %d, want 1999", provider.createdAmount)
	}

	payerToken := tokenFor(t, h, "payer@x.com")
	rec = doJSON(t, h, http.MethodPost, "/payment", payerToken, models.Payment{
		Email: "payer@x.com", Price: 19.99, TransactionID: "pi_ok",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("record payment: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/payment", payerToken, models.Payment{
		Email: "payer@x.com", Price: 19.99, TransactionID: "pi_open",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unverified payment: status %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/payment", payerToken, nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin payment list: status %d, want 403", rec.Code)
	}

	adminToken := tokenFor(t, h, "admin@x.com")
	var listed []*models.Payment
	rec = doJSON(t, h, http.MethodGet, "/payment", adminToken, nil, &listed)
	if rec.Code != http.StatusOK || len(listed) != 1 || listed[0].TransactionID != "pi_ok" {
		t.Fatalf("admin payment list: status %d payments %+v", rec.Code, listed)
	}
}

func TestPaymentProviderOutage(t *testing.T) {
	h, _, provider := newTestHandler()
	provider.fail = true
	rec := doJSON(t, h, http.MethodPost, "/create-payment-intent", "", map[string]float64{"price": 5}, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestAdminStats(t *testing.T) {
	h, store, _ := newTestHandler()
	_ = store.AddUser(&models.User{ID: "u1", Email: "admin@x.com", Role: "Admin"})
	for i := 0; i < 3; i++ {
		_ = store.AddSurvey(&models.Survey{ID: fmt.Sprintf("s%d", i), Title: "t", Category: "c", Description: "d"})
	}

	adminToken := tokenFor(t, h, "admin@x.com")
	var stats map[string]int
	rec := doJSON(t, h, http.MethodGet, "/api/v1/admin/stats", adminToken, nil, &stats)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: status %d", rec.Code)
	}
	if stats["users"] != 1 || stats["surveys"] != 3 || stats["payments"] != 0 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestReviewsArePublic(t *testing.T) {
	h, store, _ := newTestHandler()
	_ = store.AddReview(&models.Review{ID: "r1", Name: "Sam", Text: "love it", Rating: 5})

	var reviews []*models.Review
	rec := doJSON(t, h, http.MethodGet, "/api/v1/review", "", nil, &reviews)
	if rec.Code != http.StatusOK || len(reviews) != 1 || reviews[0].Text != "love it" {
		t.Fatalf("reviews: status %d body %+v", rec.Code, reviews)
	}
}

func TestTokenExpiryIsOneYear(t *testing.T) {
	if middleware.TokenTTL != 365*24*time.Hour {
		t.Fatalf("token TTL = %v, want 365 days", middleware.TokenTTL)
	}
}
