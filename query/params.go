// Package query validates query parameters and translates them into remote query/scan requests.
package query

import (
	"fmt"

	"dynoquery/models"
)

// Option configures QueryParameters built by New
type Option func(*models.QueryParameters)

// WithKeyCondition sets the key condition
func WithKeyCondition(kc *models.KeyCondition) Option {
	return func(p *models.QueryParameters) {
		p.KeyCondition = kc
	}
}

// WithFilters appends filter conditions in order
func WithFilters(filters ...models.FilterCondition) Option {
	return func(p *models.QueryParameters) {
		p.FilterConditions = append(p.FilterConditions, filters...)
	}
}

// WithIndexName selects a secondary index by name; key names are not touched
func WithIndexName(index string) Option {
	return func(p *models.QueryParameters) {
		p.Index = index
	}
}

// WithCursor sets the continuation cursor
func WithCursor(cursor models.Cursor) Option {
	return func(p *models.QueryParameters) {
		p.PaginationCursor = cursor
	}
}

// New builds and validates QueryParameters for a table key schema
func New(scanMode bool, primaryKeyName, sortKeyName string, opts ...Option) (*models.QueryParameters, error) {
	p := &models.QueryParameters{
		ScanMode:         scanMode,
		PrimaryKeyName:   primaryKeyName,
		SortKeyName:      sortKeyName,
		Index:            models.TableIndex,
		FilterConditions: []models.FilterCondition{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the scan/key condition invariant
func Validate(p *models.QueryParameters) error {
	if p == nil {
		return fmt.Errorf("%w: parameters are nil", models.ErrMissingKeyCondition)
	}
	if p.ScanMode && p.KeyCondition != nil {
		return models.ErrInvalidScanState
	}
	if !p.ScanMode && p.KeyCondition == nil {
		return models.ErrMissingKeyCondition
	}
	if !p.ScanMode && p.PrimaryKeyName == "" {
		return fmt.Errorf("%w: primary key name is empty", models.ErrMissingKeyCondition)
	}
	return nil
}

// ForIndex returns a copy of p targeting the named index of the table, with the key names
// swapped for the index key schema
func ForIndex(p *models.QueryParameters, meta *models.TableMetadata, index string) (*models.QueryParameters, error) {
	keys, ok := meta.IndexKeys(index)
	if !ok {
		return nil, fmt.Errorf("%w: %q on table %s", models.ErrUnknownIndex, index, meta.TableName)
	}
	out := Clone(p)
	out.PrimaryKeyName = keys.PrimaryKeyName
	out.SortKeyName = keys.SortKeyName
	if index == "" {
		index = models.TableIndex
	}
	out.Index = index
	return out, nil
}

// Clone returns a deep copy of p without the pagination cursor
func Clone(p *models.QueryParameters) *models.QueryParameters {
	out := *p
	out.PaginationCursor = nil
	if p.KeyCondition != nil {
		kc := *p.KeyCondition
		if kc.SortCondition != nil {
			sc := *kc.SortCondition
			kc.SortCondition = &sc
		}
		out.KeyCondition = &kc
	}
	out.FilterConditions = append([]models.FilterCondition{}, p.FilterConditions...)
	return &out
}
