package services

import (
	"context"

	"dynoquery/models"
	"dynoquery/query"
	"dynoquery/results"
	"dynoquery/worker"
)

// QueryServiceInterface defines the contract for running queries within one session
type QueryServiceInterface interface {
	Session() *models.Session
	Table() *models.TableMetadata
	NewParams(scanMode bool, index string, opts ...query.Option) (*models.QueryParameters, error)

	// Synchronous paging
	Run(ctx context.Context, params *models.QueryParameters) (*results.Page, error)
	NextPage(ctx context.Context) (*results.Page, error)
	PreviousPage() (*results.Page, bool)

	// Background paging; results arrive on the container's results channel
	Submit(ctx context.Context, params *models.QueryParameters) uint64
	RequestNextPage(ctx context.Context) uint64

	SwitchTable(ctx context.Context, tableName string) error
	SaveQuery(ctx context.Context, name, description string, params *models.QueryParameters) (*models.SavedQuery, error)
	ReplayHistory(ctx context.Context, key string) (*results.Page, error)
	ReplayLast(ctx context.Context) (*results.Page, error)
	ReplaySaved(ctx context.Context, name string) (*results.Page, error)
	Accumulator() *results.Accumulator
}

// SessionServiceInterface defines the contract for session management
type SessionServiceInterface interface {
	CreateGroup(ctx context.Context, name string) (*models.SessionGroup, error)
	ListGroups(ctx context.Context, page, pageSize int, search string) (*models.Page[models.SessionGroup], error)
	RenameGroup(ctx context.Context, id, name string) error
	DeleteGroup(ctx context.Context, id string) (int64, error)

	CreateSession(ctx context.Context, session *models.Session) (*models.Session, error)
	ListSessions(ctx context.Context, page, pageSize int, search string) (*models.Page[models.Session], error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	UpdateSession(ctx context.Context, id string, update *models.SessionUpdate) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	ListTables(ctx context.Context, id string) ([]string, error)
}

// LibraryServiceInterface defines the contract for browsing history and saved queries
type LibraryServiceInterface interface {
	ListHistory(ctx context.Context, page, pageSize int) (*models.Page[models.HistoryEntry], error)
	DeleteHistory(ctx context.Context, key string) error
	ClearHistory(ctx context.Context) (int64, error)

	ListSaved(ctx context.Context, page, pageSize int, search string) (*models.Page[models.SavedQuery], error)
	GetSaved(ctx context.Context, name string) (*models.SavedQuery, error)
	RenameSaved(ctx context.Context, name, newName string) error
	DescribeSaved(ctx context.Context, name, description string) error
	DeleteSaved(ctx context.Context, name string) error
}

// ServiceContainerInterface defines the main service container contract
type ServiceContainerInterface interface {
	GetSessionService() SessionServiceInterface
	GetLibraryService() LibraryServiceInterface
	OpenQuery(ctx context.Context, sessionID string) (QueryServiceInterface, error)
	Results() <-chan worker.Result
	Close()
}
