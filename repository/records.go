package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dynoquery/models"
	"dynoquery/store"
	"dynoquery/utils/logger"
)

// listPage reads one page of a record type and decodes each row. Rows that fail to decode
// are skipped and reported in Malformed so one bad row never hides the others.
func listPage[T any](ctx context.Context, db RecordStore, log logger.Logger, opts store.ListOptions,
	decode func(*models.StoreRecord) (*T, error)) (*models.Page[T], error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = defaultPageSize
	}

	records, total, err := db.List(ctx, opts)
	if err != nil {
		log.Errorf("Failed to list %s records: %v", opts.RecordType, err)
		return nil, err
	}

	page := &models.Page[T]{
		Items:    make([]T, 0, len(records)),
		Page:     opts.Page,
		PageSize: opts.PageSize,
		Total:    total,
	}
	for i := range records {
		item, err := decode(&records[i])
		if err != nil {
			log.Warnf("Skipping %s record %s: %v", opts.RecordType, records[i].Key, err)
			page.Malformed = append(page.Malformed, records[i].Key)
			continue
		}
		page.Items = append(page.Items, *item)
	}
	return page, nil
}

// getTyped fetches key and checks that it holds a record of the expected type
func getTyped(ctx context.Context, db RecordStore, key string, recordType models.RecordType) (*models.StoreRecord, error) {
	rec, err := db.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.RecordType != recordType {
		return nil, fmt.Errorf("%w: %s is not a %s", models.ErrNotFound, key, recordType)
	}
	return rec, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

const defaultPageSize = 50

// zeroTime lets the store stamp the record with its own clock
var zeroTime time.Time
