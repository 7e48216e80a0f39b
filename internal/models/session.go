package models

import "time"

// Session is an authenticated account as reported by the auth collaborator.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	IDToken      string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SessionEventType names a session transition.
type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "signed_in"
	SessionSignedOut SessionEventType = "signed_out"
)

// SessionEvent is published on every session transition.
type SessionEvent struct {
	Type   SessionEventType `json:"type"`
	UserID string           `json:"user_id,omitempty"`
	Email  string           `json:"email,omitempty"`
	At     time.Time        `json:"at"`
}

// UserProfile is the users/<uid> document kept in the remote document store.
type UserProfile struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	ProfilePic  string `json:"profilePic,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}
