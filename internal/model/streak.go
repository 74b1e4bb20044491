package model

import "time"

// Streak counts how many times a user asked for the same term.
//
// Term is always stored lowercased; (UserID, Term) is unique in every
// backend, so a user has at most one streak per term.
type Streak struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Term      string    `json:"term"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}
