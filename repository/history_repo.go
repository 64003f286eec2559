package repository

import (
	"context"
	"fmt"
	"time"

	"dynoquery/models"
	"dynoquery/query"
	"dynoquery/store"
	"dynoquery/utils/logger"
)

type HistoryRepository struct {
	db     RecordStore
	logger logger.Logger
	now    func() time.Time
}

func NewHistoryRepository(db RecordStore, log logger.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: log,
		now:    time.Now,
	}
}

// Log appends an executed query to the history. Unfiltered scans are refused with
// ErrUnfilteredScan before anything is written.
func (r *HistoryRepository) Log(ctx context.Context, params *models.QueryParameters) (*models.HistoryEntry, error) {
	if params.IsUnfilteredScan() {
		return nil, models.ErrUnfilteredScan
	}
	if err := query.Validate(params); err != nil {
		return nil, err
	}

	hash, err := query.ContentHash(params)
	if err != nil {
		return nil, err
	}

	ts := r.now().UTC()
	entry := &models.HistoryEntry{
		Key:             historyKey(ts, hash),
		Timestamp:       ts,
		QueryParameters: *query.Canonical(params),
	}

	payload, err := query.EncodePayload(entry)
	if err != nil {
		return nil, err
	}
	if err := r.db.Insert(ctx, entry.Key, models.RecordTypeHistory, payload, ts); err != nil {
		r.logger.Errorf("Failed to log history entry: %v", err)
		return nil, err
	}

	r.logger.Debugf("History entry logged: %s", entry.Key)
	return entry, nil
}

// List returns one page of history, newest first
func (r *HistoryRepository) List(ctx context.Context, page, pageSize int) (*models.Page[models.HistoryEntry], error) {
	return listPage(ctx, r.db, r.logger, store.ListOptions{
		RecordType: models.RecordTypeHistory,
		Page:       page,
		PageSize:   pageSize,
		OrderBy:    models.OrderByCreatedDesc,
	}, decodeHistory)
}

// Last returns the most recent history entry
func (r *HistoryRepository) Last(ctx context.Context) (*models.HistoryEntry, error) {
	rec, err := r.db.Last(ctx, models.RecordTypeHistory)
	if err != nil {
		return nil, err
	}
	return decodeHistory(rec)
}

func (r *HistoryRepository) Get(ctx context.Context, key string) (*models.HistoryEntry, error) {
	rec, err := getTyped(ctx, r.db, key, models.RecordTypeHistory)
	if err != nil {
		return nil, err
	}
	return decodeHistory(rec)
}

func (r *HistoryRepository) Delete(ctx context.Context, key string) error {
	if _, err := getTyped(ctx, r.db, key, models.RecordTypeHistory); err != nil {
		return err
	}
	return r.db.Remove(ctx, key)
}

// Clear removes the whole history
func (r *HistoryRepository) Clear(ctx context.Context) (int64, error) {
	n, err := r.db.RemoveAll(ctx, models.RecordTypeHistory)
	if err != nil {
		r.logger.Errorf("Failed to clear history: %v", err)
		return 0, err
	}
	r.logger.Infof("History cleared: %d entries removed", n)
	return n, nil
}

// Prune keeps the newest keep entries
func (r *HistoryRepository) Prune(ctx context.Context, keep int) (int64, error) {
	return r.db.PruneOldest(ctx, models.RecordTypeHistory, keep)
}

func historyKey(ts time.Time, hash string) string {
	return ts.Format(time.RFC3339Nano) + "_" + hash
}

func decodeHistory(rec *models.StoreRecord) (*models.HistoryEntry, error) {
	var entry models.HistoryEntry
	if err := query.DecodePayload(rec.Payload, &entry, &entry.QueryParameters); err != nil {
		return nil, fmt.Errorf("history entry %s: %w", rec.Key, err)
	}
	entry.Key = rec.Key
	if entry.Timestamp.IsZero() {
		entry.Timestamp = rec.CreatedAt
	}
	return &entry, nil
}
