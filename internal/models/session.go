package models

import "time"

// Identity is the authenticated user as the auth service knows it.
type Identity struct {
	ID       string
	Email    string
	Metadata map[string]interface{}
}

// Session is passed explicitly through every Access Layer call.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         Identity  `json:"-"`
}

// SignUpMetadata is captured at sign-up and used for lazy profile creation.
type SignUpMetadata struct {
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}
