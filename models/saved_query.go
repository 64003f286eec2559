package models

import "time"

// SavedQuery is a named query definition, keyed by the content hash of its parameters
type SavedQuery struct {
	Key         string `json:"-"`
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description,omitempty" validate:"max=1024"`
	QueryParameters
	CreatedAt time.Time `json:"-"`
}

// HistoryEntry is a query that was executed, keyed by {timestamp}_{contentHash}
type HistoryEntry struct {
	Key       string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	QueryParameters
}
