package repository

import (
	"context"
	"time"

	"dynoquery/models"
	"dynoquery/store"
)

// RecordStore defines the contract of the embedded document store
type RecordStore interface {
	Insert(ctx context.Context, key string, recordType models.RecordType, payload []byte, createdAt time.Time) error
	Update(ctx context.Context, key string, partial []byte, recordType models.RecordType) error
	Remove(ctx context.Context, key string) error
	RemoveAll(ctx context.Context, recordType models.RecordType) (int64, error)
	RemoveCascade(ctx context.Context, key string, childType models.RecordType, field, value string) (int64, error)
	List(ctx context.Context, opts store.ListOptions) ([]models.StoreRecord, int, error)
	Get(ctx context.Context, key string) (*models.StoreRecord, error)
	GetByName(ctx context.Context, recordType models.RecordType, name string) (*models.StoreRecord, error)
	Last(ctx context.Context, recordType models.RecordType) (*models.StoreRecord, error)
	Count(ctx context.Context, recordType models.RecordType) (int, error)
	PruneOldest(ctx context.Context, recordType models.RecordType, keep int) (int64, error)
}

// HistoryRepositoryInterface defines the contract for query history operations
type HistoryRepositoryInterface interface {
	Log(ctx context.Context, params *models.QueryParameters) (*models.HistoryEntry, error)
	List(ctx context.Context, page, pageSize int) (*models.Page[models.HistoryEntry], error)
	Last(ctx context.Context) (*models.HistoryEntry, error)
	Get(ctx context.Context, key string) (*models.HistoryEntry, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) (int64, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// SavedQueryRepositoryInterface defines the contract for saved query operations
type SavedQueryRepositoryInterface interface {
	Save(ctx context.Context, name, description string, params *models.QueryParameters) (*models.SavedQuery, error)
	List(ctx context.Context, page, pageSize int, search string) (*models.Page[models.SavedQuery], error)
	Get(ctx context.Context, key string) (*models.SavedQuery, error)
	GetByName(ctx context.Context, name string) (*models.SavedQuery, error)
	Rename(ctx context.Context, key, name string) error
	UpdateDescription(ctx context.Context, key, description string) error
	Delete(ctx context.Context, key string) error
}

// SessionRepositoryInterface defines the contract for session and session group operations
type SessionRepositoryInterface interface {
	CreateGroup(ctx context.Context, group *models.SessionGroup) (*models.SessionGroup, error)
	ListGroups(ctx context.Context, page, pageSize int, search string) (*models.Page[models.SessionGroup], error)
	GetGroup(ctx context.Context, id string) (*models.SessionGroup, error)
	RenameGroup(ctx context.Context, id, name string) error
	DeleteGroup(ctx context.Context, id string) (int64, error)

	CreateSession(ctx context.Context, session *models.Session) (*models.Session, error)
	ListSessions(ctx context.Context, page, pageSize int, search string) (*models.Page[models.Session], error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	UpdateSession(ctx context.Context, id string, update *models.SessionUpdate) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// RepositoryContainerInterface defines the contract for the repository container
type RepositoryContainerInterface interface {
	GetHistoryRepository() HistoryRepositoryInterface
	GetSavedQueryRepository() SavedQueryRepositoryInterface
	GetSessionRepository() SessionRepositoryInterface
}
