package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dynoquery/models"
	"dynoquery/query"
	"dynoquery/store"
	"dynoquery/utils/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockRecordStore is a mock implementation of RecordStore
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Insert(ctx context.Context, key string, recordType models.RecordType, payload []byte, createdAt time.Time) error {
	return m.Called(ctx, key, recordType, payload, createdAt).Error(0)
}

func (m *MockRecordStore) Update(ctx context.Context, key string, partial []byte, recordType models.RecordType) error {
	return m.Called(ctx, key, partial, recordType).Error(0)
}

func (m *MockRecordStore) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockRecordStore) RemoveAll(ctx context.Context, recordType models.RecordType) (int64, error) {
	args := m.Called(ctx, recordType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordStore) RemoveCascade(ctx context.Context, key string, childType models.RecordType, field, value string) (int64, error) {
	args := m.Called(ctx, key, childType, field, value)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordStore) List(ctx context.Context, opts store.ListOptions) ([]models.StoreRecord, int, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]models.StoreRecord), args.Int(1), args.Error(2)
}

func (m *MockRecordStore) Get(ctx context.Context, key string) (*models.StoreRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoreRecord), args.Error(1)
}

func (m *MockRecordStore) GetByName(ctx context.Context, recordType models.RecordType, name string) (*models.StoreRecord, error) {
	args := m.Called(ctx, recordType, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoreRecord), args.Error(1)
}

func (m *MockRecordStore) Last(ctx context.Context, recordType models.RecordType) (*models.StoreRecord, error) {
	args := m.Called(ctx, recordType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoreRecord), args.Error(1)
}

func (m *MockRecordStore) Count(ctx context.Context, recordType models.RecordType) (int, error) {
	args := m.Called(ctx, recordType)
	return args.Int(0), args.Error(1)
}

func (m *MockRecordStore) PruneOldest(ctx context.Context, recordType models.RecordType, keep int) (int64, error) {
	args := m.Called(ctx, recordType, keep)
	return args.Get(0).(int64), args.Error(1)
}

func unfilteredScan() *models.QueryParameters {
	return &models.QueryParameters{ScanMode: true, PrimaryKeyName: "pk", Index: models.TableIndex, FilterConditions: []models.FilterCondition{}}
}

func userQuery(partition string) *models.QueryParameters {
	p, _ := query.New(false, "pk", "sk",
		query.WithKeyCondition(&models.KeyCondition{
			PartitionValue: partition,
			SortCondition:  &models.AttributeCondition{AttrType: models.StringType, Operator: models.OpBeginsWith, Value: "ORDER#"},
		}),
		query.WithFilters(models.FilterCondition{
			AttrName:           "status",
			AttributeCondition: models.AttributeCondition{AttrType: models.StringType, Operator: models.OpEqual, Value: "open"},
		}),
	)
	return p
}

// TestUnfilteredScanIsNeverWritten tests the persistence guard on both write paths
func TestUnfilteredScanIsNeverWritten(t *testing.T) {
	db := &MockRecordStore{}
	log := logger.NewLogger("error", "text")

	_, err := NewHistoryRepository(db, log).Log(context.Background(), unfilteredScan())
	assert.ErrorIs(t, err, models.ErrUnfilteredScan)

	_, err = NewSavedQueryRepository(db, log).Save(context.Background(), "all", "", unfilteredScan())
	assert.ErrorIs(t, err, models.ErrUnfilteredScan)

	db.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	db.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// RepositoryTestSuite runs the repositories against a real store
type RepositoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	db    *store.Store
	repo  *Repository
	clock time.Time
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	log := logger.NewLogger("error", "text")
	db, err := store.Open(suite.ctx, filepath.Join(suite.T().TempDir(), "repo.db"), log)
	require.NoError(suite.T(), err)
	suite.db = db
	suite.repo = NewRepository(db, log)

	suite.clock = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	suite.repo.History.now = func() time.Time {
		suite.clock = suite.clock.Add(time.Second)
		return suite.clock
	}
}

func (suite *RepositoryTestSuite) TearDownTest() {
	suite.db.Close()
}

// TestHistoryLogAndList tests append-only history in newest-first order
func (suite *RepositoryTestSuite) TestHistoryLogAndList() {
	first, err := suite.repo.History.Log(suite.ctx, userQuery("USER#1"))
	require.NoError(suite.T(), err)
	second, err := suite.repo.History.Log(suite.ctx, userQuery("USER#1"))
	require.NoError(suite.T(), err)

	hash, _ := query.ContentHash(userQuery("USER#1"))
	assert.Equal(suite.T(), "2024-05-01T09:00:01Z_"+hash, first.Key)
	assert.NotEqual(suite.T(), first.Key, second.Key)

	page, err := suite.repo.History.List(suite.ctx, 1, 10)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, page.Total)
	require.Len(suite.T(), page.Items, 2)
	assert.Equal(suite.T(), second.Key, page.Items[0].Key)
	assert.True(suite.T(), query.Equal(userQuery("USER#1"), &page.Items[0].QueryParameters))

	last, err := suite.repo.History.Last(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), second.Key, last.Key)
	assert.True(suite.T(), second.Timestamp.Equal(last.Timestamp))
}

// TestHistoryMalformedRowIsolation tests that a corrupted row only fails when read itself
func (suite *RepositoryTestSuite) TestHistoryMalformedRowIsolation() {
	before, err := suite.repo.History.Log(suite.ctx, userQuery("USER#1"))
	require.NoError(suite.T(), err)

	bad := `{"scan_mode":false,"primary_key_name":"pk","index":"table","key_condition":"{partition_value: USER#2","filter_conditions":[]}`
	require.NoError(suite.T(), suite.db.Insert(suite.ctx, "bad-row", models.RecordTypeHistory, []byte(bad), suite.clock.Add(time.Second)))
	suite.clock = suite.clock.Add(time.Second)

	after, err := suite.repo.History.Log(suite.ctx, userQuery("USER#3"))
	require.NoError(suite.T(), err)

	_, err = suite.repo.History.Get(suite.ctx, "bad-row")
	assert.ErrorIs(suite.T(), err, models.ErrMalformedStoredPayload)

	_, err = suite.repo.History.Get(suite.ctx, before.Key)
	assert.NoError(suite.T(), err)
	_, err = suite.repo.History.Get(suite.ctx, after.Key)
	assert.NoError(suite.T(), err)

	page, err := suite.repo.History.List(suite.ctx, 1, 10)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, page.Total)
	assert.Len(suite.T(), page.Items, 2)
	assert.Equal(suite.T(), []string{"bad-row"}, page.Malformed)
}

// TestHistoryDeleteClearPrune tests history removal paths
func (suite *RepositoryTestSuite) TestHistoryDeleteClearPrune() {
	var keys []string
	for _, p := range []string{"A", "B", "C", "D"} {
		e, err := suite.repo.History.Log(suite.ctx, userQuery(p))
		require.NoError(suite.T(), err)
		keys = append(keys, e.Key)
	}

	require.NoError(suite.T(), suite.repo.History.Delete(suite.ctx, keys[0]))
	assert.ErrorIs(suite.T(), suite.repo.History.Delete(suite.ctx, keys[0]), models.ErrNotFound)

	n, err := suite.repo.History.Prune(suite.ctx, 2)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), n)

	n, err = suite.repo.History.Clear(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), n)

	_, err = suite.repo.History.Last(suite.ctx)
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

// TestSavedQueryIdempotent tests that re-saving the same query keeps one row
func (suite *RepositoryTestSuite) TestSavedQueryIdempotent() {
	first, err := suite.repo.SavedQuery.Save(suite.ctx, "open orders", "", userQuery("USER#1"))
	require.NoError(suite.T(), err)
	second, err := suite.repo.SavedQuery.Save(suite.ctx, "open orders v2", "renamed", userQuery("USER#1"))
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), first.Key, second.Key)
	assert.Equal(suite.T(), "open orders v2", second.Name)
	assert.Equal(suite.T(), "renamed", second.Description)

	count, err := suite.db.Count(suite.ctx, models.RecordTypeSavedQuery)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

// TestSavedQueryRoundTrip tests that stored parameters decode to an equal query
func (suite *RepositoryTestSuite) TestSavedQueryRoundTrip() {
	params := userQuery("USER#9")
	saved, err := suite.repo.SavedQuery.Save(suite.ctx, "nine", "user nine", params)
	require.NoError(suite.T(), err)

	got, err := suite.repo.SavedQuery.GetByName(suite.ctx, "nine")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), saved.Key, got.Key)
	assert.Equal(suite.T(), *query.Canonical(params), got.QueryParameters)
	assert.False(suite.T(), got.CreatedAt.IsZero())
}

// TestSavedQueryListRenameDelete tests listing order, search and partial updates
func (suite *RepositoryTestSuite) TestSavedQueryListRenameDelete() {
	b, err := suite.repo.SavedQuery.Save(suite.ctx, "beta orders", "", userQuery("B"))
	require.NoError(suite.T(), err)
	_, err = suite.repo.SavedQuery.Save(suite.ctx, "alpha orders", "", userQuery("A"))
	require.NoError(suite.T(), err)
	_, err = suite.repo.SavedQuery.Save(suite.ctx, "invoices", "", userQuery("C"))
	require.NoError(suite.T(), err)

	page, err := suite.repo.SavedQuery.List(suite.ctx, 1, 10, "orders")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), page.Items, 2)
	assert.Equal(suite.T(), "alpha orders", page.Items[0].Name)
	assert.Equal(suite.T(), "beta orders", page.Items[1].Name)

	require.NoError(suite.T(), suite.repo.SavedQuery.Rename(suite.ctx, b.Key, "gamma orders"))
	require.NoError(suite.T(), suite.repo.SavedQuery.UpdateDescription(suite.ctx, b.Key, "moved"))
	got, err := suite.repo.SavedQuery.Get(suite.ctx, b.Key)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "gamma orders", got.Name)
	assert.Equal(suite.T(), "moved", got.Description)
	assert.True(suite.T(), query.Equal(userQuery("B"), &got.QueryParameters))

	assert.ErrorIs(suite.T(), suite.repo.SavedQuery.Rename(suite.ctx, b.Key, ""), models.ErrInvalidValue)

	require.NoError(suite.T(), suite.repo.SavedQuery.Delete(suite.ctx, b.Key))
	_, err = suite.repo.SavedQuery.Get(suite.ctx, b.Key)
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

// TestSessionRequiresGroup tests group containment on create
func (suite *RepositoryTestSuite) TestSessionRequiresGroup() {
	_, err := suite.repo.Session.CreateSession(suite.ctx, &models.Session{
		Name: "dev", TableName: "orders", Region: "us-east-1", SessionGroupID: "missing",
	})
	assert.ErrorIs(suite.T(), err, models.ErrSessionGroupNotFound)

	_, err = suite.repo.Session.CreateSession(suite.ctx, &models.Session{Name: "dev", Region: "us-east-1", SessionGroupID: "g"})
	assert.ErrorIs(suite.T(), err, models.ErrInvalidValue)
}

// TestDeleteGroupCascades tests that deleting a group removes only its own sessions
func (suite *RepositoryTestSuite) TestDeleteGroupCascades() {
	g1, err := suite.repo.Session.CreateGroup(suite.ctx, &models.SessionGroup{Name: "team a"})
	require.NoError(suite.T(), err)
	g2, err := suite.repo.Session.CreateGroup(suite.ctx, &models.SessionGroup{Name: "team b"})
	require.NoError(suite.T(), err)

	mk := func(name, group string) *models.Session {
		s, err := suite.repo.Session.CreateSession(suite.ctx, &models.Session{
			Name: name, TableName: "orders", Region: "us-east-1", SessionGroupID: group,
		})
		require.NoError(suite.T(), err)
		return s
	}
	s1 := mk("one", g1.SessionGroupID)
	s2 := mk("two", g1.SessionGroupID)
	s3 := mk("three", g2.SessionGroupID)

	n, err := suite.repo.Session.DeleteGroup(suite.ctx, g1.SessionGroupID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), n)

	for _, id := range []string{s1.SessionID, s2.SessionID} {
		_, err := suite.repo.Session.GetSession(suite.ctx, id)
		assert.ErrorIs(suite.T(), err, models.ErrNotFound)
	}
	_, err = suite.repo.Session.GetGroup(suite.ctx, g1.SessionGroupID)
	assert.ErrorIs(suite.T(), err, models.ErrSessionGroupNotFound)

	kept, err := suite.repo.Session.GetSession(suite.ctx, s3.SessionID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), g2.SessionGroupID, kept.SessionGroupID)

	_, err = suite.repo.Session.DeleteGroup(suite.ctx, g1.SessionGroupID)
	assert.ErrorIs(suite.T(), err, models.ErrSessionGroupNotFound)
}

// TestSessionUpdateAndDelete tests partial session updates
func (suite *RepositoryTestSuite) TestSessionUpdateAndDelete() {
	g, err := suite.repo.Session.CreateGroup(suite.ctx, &models.SessionGroup{Name: "team"})
	require.NoError(suite.T(), err)
	s, err := suite.repo.Session.CreateSession(suite.ctx, &models.Session{
		Name: "dev", TableName: "orders", Region: "us-east-1", SessionGroupID: g.SessionGroupID,
	})
	require.NoError(suite.T(), err)

	table := "invoices"
	updated, err := suite.repo.Session.UpdateSession(suite.ctx, s.SessionID, &models.SessionUpdate{TableName: &table})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "invoices", updated.TableName)
	assert.Equal(suite.T(), "dev", updated.Name)

	missing := "nope"
	_, err = suite.repo.Session.UpdateSession(suite.ctx, s.SessionID, &models.SessionUpdate{SessionGroupID: &missing})
	assert.ErrorIs(suite.T(), err, models.ErrSessionGroupNotFound)

	require.NoError(suite.T(), suite.repo.Session.DeleteSession(suite.ctx, s.SessionID))
	_, err = suite.repo.Session.GetGroup(suite.ctx, g.SessionGroupID)
	assert.NoError(suite.T(), err)

	groups, err := suite.repo.Session.ListGroups(suite.ctx, 1, 10, "")
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), groups.Items, 1)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
