package repository

import (
	"dynoquery/utils/logger"
)

// Repository groups the typed repositories over one record store
type Repository struct {
	History    *HistoryRepository
	SavedQuery *SavedQueryRepository
	Session    *SessionRepository
}

func NewRepository(db RecordStore, log logger.Logger) *Repository {
	return &Repository{
		History:    NewHistoryRepository(db, log),
		SavedQuery: NewSavedQueryRepository(db, log),
		Session:    NewSessionRepository(db, log),
	}
}

// GetHistoryRepository returns the history repository
func (r *Repository) GetHistoryRepository() HistoryRepositoryInterface {
	return r.History
}

// GetSavedQueryRepository returns the saved query repository
func (r *Repository) GetSavedQueryRepository() SavedQueryRepositoryInterface {
	return r.SavedQuery
}

// GetSessionRepository returns the session repository
func (r *Repository) GetSessionRepository() SessionRepositoryInterface {
	return r.Session
}
