package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dynoquery/models"
	"dynoquery/query"
	"dynoquery/store"
	"dynoquery/utils/logger"
)

type SavedQueryRepository struct {
	db     RecordStore
	logger logger.Logger
}

func NewSavedQueryRepository(db RecordStore, log logger.Logger) *SavedQueryRepository {
	return &SavedQueryRepository{
		db:     db,
		logger: log,
	}
}

// Save stores params under its content hash. Saving an identical query again keeps the
// single existing row and only refreshes its name and description.
func (r *SavedQueryRepository) Save(ctx context.Context, name, description string, params *models.QueryParameters) (*models.SavedQuery, error) {
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

	saved := &models.SavedQuery{
		Key:             hash,
		Name:            name,
		Description:     description,
		QueryParameters: *query.Canonical(params),
	}
	if err := validateStruct(saved); err != nil {
		return nil, err
	}

	payload, err := query.EncodePayload(saved)
	if err != nil {
		return nil, err
	}

	err = r.db.Insert(ctx, hash, models.RecordTypeSavedQuery, payload, saved.CreatedAt)
	if errors.Is(err, models.ErrDuplicateKey) {
		r.logger.Debugf("Saved query %s already exists, updating name", hash)
		if err := r.patch(ctx, hash, map[string]string{"name": name, "description": description}); err != nil {
			return nil, err
		}
		return r.Get(ctx, hash)
	}
	if err != nil {
		r.logger.Errorf("Failed to save query: %v", err)
		return nil, err
	}

	r.logger.Infof("Query saved: %s (%s)", name, hash)
	return r.Get(ctx, hash)
}

// List returns one page of saved queries ordered by name, optionally filtered by a
// case-sensitive name substring
func (r *SavedQueryRepository) List(ctx context.Context, page, pageSize int, search string) (*models.Page[models.SavedQuery], error) {
	return listPage(ctx, r.db, r.logger, store.ListOptions{
		RecordType: models.RecordTypeSavedQuery,
		Page:       page,
		PageSize:   pageSize,
		Search:     search,
		OrderBy:    models.OrderByNameAsc,
	}, decodeSavedQuery)
}

func (r *SavedQueryRepository) Get(ctx context.Context, key string) (*models.SavedQuery, error) {
	rec, err := getTyped(ctx, r.db, key, models.RecordTypeSavedQuery)
	if err != nil {
		return nil, err
	}
	return decodeSavedQuery(rec)
}

func (r *SavedQueryRepository) GetByName(ctx context.Context, name string) (*models.SavedQuery, error) {
	rec, err := r.db.GetByName(ctx, models.RecordTypeSavedQuery, name)
	if err != nil {
		return nil, err
	}
	return decodeSavedQuery(rec)
}

func (r *SavedQueryRepository) Rename(ctx context.Context, key, name string) error {
	if err := validate.Var(name, "required,max=128"); err != nil {
		return fmt.Errorf("%w: name %s", models.ErrInvalidValue, formatValidationErrors(err))
	}
	return r.patch(ctx, key, map[string]string{"name": name})
}

func (r *SavedQueryRepository) UpdateDescription(ctx context.Context, key, description string) error {
	if err := validate.Var(description, "max=1024"); err != nil {
		return fmt.Errorf("%w: description %s", models.ErrInvalidValue, formatValidationErrors(err))
	}
	return r.patch(ctx, key, map[string]string{"description": description})
}

func (r *SavedQueryRepository) Delete(ctx context.Context, key string) error {
	if _, err := getTyped(ctx, r.db, key, models.RecordTypeSavedQuery); err != nil {
		return err
	}
	if err := r.db.Remove(ctx, key); err != nil {
		r.logger.Errorf("Failed to delete saved query %s: %v", key, err)
		return err
	}
	r.logger.Infof("Saved query deleted: %s", key)
	return nil
}

func (r *SavedQueryRepository) patch(ctx context.Context, key string, fields map[string]string) error {
	partial, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return r.db.Update(ctx, key, partial, models.RecordTypeSavedQuery)
}

func decodeSavedQuery(rec *models.StoreRecord) (*models.SavedQuery, error) {
	var saved models.SavedQuery
	if err := query.DecodePayload(rec.Payload, &saved, &saved.QueryParameters); err != nil {
		return nil, fmt.Errorf("saved query %s: %w", rec.Key, err)
	}
	saved.Key = rec.Key
	saved.CreatedAt = rec.CreatedAt
	return &saved, nil
}
