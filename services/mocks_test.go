package services

import (
	"context"

	"dynoquery/models"
	"dynoquery/query"
	"dynoquery/repository"

	"github.com/stretchr/testify/mock"
)

// MockDatabaseClient implements dal.DatabaseClientInterface for testing
type MockDatabaseClient struct {
	mock.Mock
}

func (m *MockDatabaseClient) Execute(ctx context.Context, tableName string, wire *query.WireParams) (*models.RemotePage, error) {
	args := m.Called(ctx, tableName, wire)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RemotePage), args.Error(1)
}

func (m *MockDatabaseClient) DescribeTable(ctx context.Context, tableName string) (*models.TableMetadata, error) {
	args := m.Called(ctx, tableName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TableMetadata), args.Error(1)
}

func (m *MockDatabaseClient) ListTables(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockHistoryRepository implements repository.HistoryRepositoryInterface for testing
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Log(ctx context.Context, params *models.QueryParameters) (*models.HistoryEntry, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) List(ctx context.Context, page, pageSize int) (*models.Page[models.HistoryEntry], error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.HistoryEntry]), args.Error(1)
}

func (m *MockHistoryRepository) Last(ctx context.Context) (*models.HistoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) Get(ctx context.Context, key string) (*models.HistoryEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockHistoryRepository) Clear(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHistoryRepository) Prune(ctx context.Context, keep int) (int64, error) {
	args := m.Called(ctx, keep)
	return args.Get(0).(int64), args.Error(1)
}

// MockSavedQueryRepository implements repository.SavedQueryRepositoryInterface for testing
type MockSavedQueryRepository struct {
	mock.Mock
}

func (m *MockSavedQueryRepository) Save(ctx context.Context, name, description string, params *models.QueryParameters) (*models.SavedQuery, error) {
	args := m.Called(ctx, name, description, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedQuery), args.Error(1)
}

func (m *MockSavedQueryRepository) List(ctx context.Context, page, pageSize int, search string) (*models.Page[models.SavedQuery], error) {
	args := m.Called(ctx, page, pageSize, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.SavedQuery]), args.Error(1)
}

func (m *MockSavedQueryRepository) Get(ctx context.Context, key string) (*models.SavedQuery, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedQuery), args.Error(1)
}

func (m *MockSavedQueryRepository) GetByName(ctx context.Context, name string) (*models.SavedQuery, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedQuery), args.Error(1)
}

func (m *MockSavedQueryRepository) Rename(ctx context.Context, key, name string) error {
	return m.Called(ctx, key, name).Error(0)
}

func (m *MockSavedQueryRepository) UpdateDescription(ctx context.Context, key, description string) error {
	return m.Called(ctx, key, description).Error(0)
}

func (m *MockSavedQueryRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// MockSessionRepository implements repository.SessionRepositoryInterface for testing
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) CreateGroup(ctx context.Context, group *models.SessionGroup) (*models.SessionGroup, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionGroup), args.Error(1)
}

func (m *MockSessionRepository) ListGroups(ctx context.Context, page, pageSize int, search string) (*models.Page[models.SessionGroup], error) {
	args := m.Called(ctx, page, pageSize, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.SessionGroup]), args.Error(1)
}

func (m *MockSessionRepository) GetGroup(ctx context.Context, id string) (*models.SessionGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionGroup), args.Error(1)
}

func (m *MockSessionRepository) RenameGroup(ctx context.Context, id, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *MockSessionRepository) DeleteGroup(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) CreateSession(ctx context.Context, session *models.Session) (*models.Session, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) ListSessions(ctx context.Context, page, pageSize int, search string) (*models.Page[models.Session], error) {
	args := m.Called(ctx, page, pageSize, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.Session]), args.Error(1)
}

func (m *MockSessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) UpdateSession(ctx context.Context, id string, update *models.SessionUpdate) (*models.Session, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) DeleteSession(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// mockRepositories implements repository.RepositoryContainerInterface over the mocks
type mockRepositories struct {
	history  *MockHistoryRepository
	saved    *MockSavedQueryRepository
	sessions *MockSessionRepository
}

func (r *mockRepositories) GetHistoryRepository() repository.HistoryRepositoryInterface {
	return r.history
}

func (r *mockRepositories) GetSavedQueryRepository() repository.SavedQueryRepositoryInterface {
	return r.saved
}

func (r *mockRepositories) GetSessionRepository() repository.SessionRepositoryInterface {
	return r.sessions
}
