// Package model defines the data structures used throughout the application.
package model

import "time"

// User is an account created by the GitHub OAuth login.
//
// The external identity is GitHubID; ID is our own xid so primary keys are not
// tied to GitHub's numbering. A user row is inserted on the first login and
// refreshed (username, email, avatar, credential) on every later one. Rows are
// never deleted by the application.
//
// Email and AvatarURL are optional: GitHub hides the email unless the user made
// it public or granted the user:email scope. Empty string means "unknown".
//
// AccessToken holds the GitHub credential in sealed form (see auth.Sealer).
// The json:"-" tag keeps it out of every API response.
type User struct {
	ID          string    `json:"id"         db:"id"`
	GitHubID    int64     `json:"github_id"  db:"github_id"`
	Username    string    `json:"username"   db:"username"`
	Email       string    `json:"email"      db:"email"`
	AvatarURL   string    `json:"avatar_url" db:"avatar_url"`
	AccessToken string    `json:"-"          db:"access_token"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
