package models

import (
	"encoding/json"
	"time"
)

// RecordType discriminates the logical record kinds held in the store
type RecordType string

const (
	RecordTypeHistory      RecordType = "history"
	RecordTypeSavedQuery   RecordType = "saved_query"
	RecordTypeSession      RecordType = "session"
	RecordTypeSessionGroup RecordType = "session_group"
)

// StoreRecord is the physical row of the local store
type StoreRecord struct {
	ID         int64           `json:"id"`
	Key        string          `json:"key"`
	RecordType RecordType      `json:"record_type"`
	CreatedAt  time.Time       `json:"created_at"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderBy selects the listing order of records
type OrderBy int

const (
	OrderByCreatedDesc OrderBy = iota
	OrderByNameAsc
)

// Page is one page of a listing. Malformed holds the keys of rows that were found
// but could not be decoded.
type Page[T any] struct {
	Items     []T      `json:"items"`
	Page      int      `json:"page"`
	PageSize  int      `json:"page_size"`
	Total     int      `json:"total"`
	Malformed []string `json:"malformed,omitempty"`
}

// HasNext reports whether a further page exists
func (p *Page[T]) HasNext() bool {
	return p.Page*p.PageSize < p.Total
}
