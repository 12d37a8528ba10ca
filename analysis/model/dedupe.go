package model

import (
	"encoding/json"
	"time"
)

// DedupeKey identifies a prior submission in the dedupe cache.
type DedupeKey struct {
	Resource string
	Key      string
}

// DedupeEntry is what the submission-dedupe middleware stores per request id.
type DedupeEntry struct {
	Status          string          `json:"status"`
	RequestBodyHash string          `json:"request_body_hash"`
	Response        json.RawMessage `json:"response,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
