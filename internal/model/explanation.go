package model

import "time"

// Explanation is one entry of the /api/explain response.
// Provider is the public display label, never the real vendor name.
type Explanation struct {
	Provider    string `json:"provider"`
	Explanation string `json:"explanation"`
}

// ExplanationRecord is the write-only audit row kept for every generated
// explanation. Responses is the JSON encoding of the []Explanation returned
// to the caller.
type ExplanationRecord struct {
	ID        string    `json:"id"`
	Term      string    `json:"term"`
	Responses string    `json:"responses"`
	CreatedAt time.Time `json:"created_at"`
}
