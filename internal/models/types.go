package models

import "time"

// User is an account record. Email is the unique key; Role is one of
// "Admin", "Surveyor", "Pro User" or empty for a plain user.
type User struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	PhotoURL  string    `json:"photoURL,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Survey is a user-submitted poll item with vote counters and
// moderation status. ParticipantEmail keeps the legacy "last voter"
// slot for response compatibility; Participants is the authoritative
// set used to deduplicate likes.
type Survey struct {
	ID               string    `json:"_id,omitempty"`
	Title            string    `json:"title"`
	Category         string    `json:"category"`
	Description      string    `json:"description"`
	Email            string    `json:"email,omitempty"`
	Like             int       `json:"like"`
	Dislike          int       `json:"dislike"`
	Report           int       `json:"report"`
	ParticipantEmail string    `json:"participantEmail,omitempty"`
	Participants     []string  `json:"participants,omitempty"`
	Status           string    `json:"status,omitempty"`
	AdminFeedback    string    `json:"adminFeedback,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
}

// Review is landing-page material; the API only lists them.
type Review struct {
	ID     string `json:"_id,omitempty"`
	Name   string `json:"name"`
	Image  string `json:"image,omitempty"`
	Text   string `json:"review"`
	Rating int    `json:"rating,omitempty"`
}

// Comment references a survey by id. No referential check is made
// against the surveys collection; dangling references are tolerated.
type Comment struct {
	ID           string `json:"_id,omitempty"`
	SurveyID     string `json:"id,omitempty"`
	UserName     string `json:"user_name"`
	UserImage    string `json:"user_image,omitempty"`
	UserFeedback string `json:"userFeedBack"`
	Date         string `json:"date,omitempty"`
}

// Payment is a verified payment confirmation. TransactionID is the
// processor's payment-intent id.
type Payment struct {
	ID            string    `json:"_id,omitempty"`
	Email         string    `json:"email"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency,omitempty"`
	TransactionID string    `json:"transactionId"`
	Date          time.Time `json:"date,omitempty"`
}

// Roles a user record may carry. Anything else resolves to "".
const (
	RoleAdmin    = "Admin"
	RoleSurveyor = "Surveyor"
	RoleProUser  = "Pro User"
)
