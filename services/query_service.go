package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dynoquery/dal"
	"dynoquery/models"
	"dynoquery/query"
	"dynoquery/repository"
	"dynoquery/results"
	"dynoquery/utils/logger"
	"dynoquery/worker"
)

// OpFetch is the exclusive background operation of a session: a new query and a next
// page request supersede each other
const OpFetch = "fetch"

// QueryService runs queries for one session. It owns the session's accumulator.
type QueryService struct {
	session *models.Session
	client  dal.DatabaseClientInterface
	history repository.HistoryRepositoryInterface
	saved   repository.SavedQueryRepositoryInterface
	runner  *worker.Runner
	acc     *results.Accumulator
	logger  logger.Logger

	mu   sync.RWMutex
	meta *models.TableMetadata
}

func NewQueryService(
	ctx context.Context,
	session *models.Session,
	client dal.DatabaseClientInterface,
	history repository.HistoryRepositoryInterface,
	saved repository.SavedQueryRepositoryInterface,
	runner *worker.Runner,
	pageSize int32,
	log logger.Logger,
) (*QueryService, error) {
	meta, err := client.DescribeTable(ctx, session.TableName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", session.TableName, err)
	}

	sessionLog := log.WithFields(map[string]interface{}{"session_id": session.SessionID})
	return &QueryService{
		session: session,
		client:  client,
		history: history,
		saved:   saved,
		runner:  runner,
		acc:     results.NewAccumulator(client, meta, pageSize, sessionLog),
		logger:  sessionLog,
		meta:    meta,
	}, nil
}

func (s *QueryService) Session() *models.Session {
	return s.session
}

func (s *QueryService) Table() *models.TableMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

func (s *QueryService) Accumulator() *results.Accumulator {
	return s.acc
}

// NewParams builds query parameters for the current table, targeting index when set
func (s *QueryService) NewParams(scanMode bool, index string, opts ...query.Option) (*models.QueryParameters, error) {
	meta := s.Table()
	params, err := query.New(scanMode, meta.PrimaryKeyName, meta.SortKeyName, opts...)
	if err != nil {
		return nil, err
	}
	if index == "" || index == models.TableIndex {
		return params, nil
	}
	return query.ForIndex(params, meta, index)
}

// Run fetches the first page of params and records it in the history. A run whose ctx is
// cancelled is not recorded.
func (s *QueryService) Run(ctx context.Context, params *models.QueryParameters) (*results.Page, error) {
	page, err := s.acc.Submit(ctx, params)
	if err != nil {
		return nil, err
	}
	if ctx.Err() == nil {
		s.logHistory(ctx, params)
	}
	return page, nil
}

// logHistory records an executed query. History failures never fail the query.
func (s *QueryService) logHistory(ctx context.Context, params *models.QueryParameters) {
	_, err := s.history.Log(ctx, params)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrUnfilteredScan):
		s.logger.Debug("Unfiltered scan not recorded in history")
	default:
		s.logger.Warnf("Failed to record query history: %v", err)
	}
}

func (s *QueryService) NextPage(ctx context.Context) (*results.Page, error) {
	return s.acc.NextPage(ctx)
}

func (s *QueryService) PreviousPage() (*results.Page, bool) {
	return s.acc.PreviousPage()
}

// Submit runs params in the background, superseding any fetch in flight for this session
func (s *QueryService) Submit(ctx context.Context, params *models.QueryParameters) uint64 {
	return s.runner.Submit(ctx, s.fetchKey(), func(ctx context.Context) (interface{}, error) {
		return s.Run(ctx, params)
	})
}

// RequestNextPage fetches the next page in the background
func (s *QueryService) RequestNextPage(ctx context.Context) uint64 {
	return s.runner.Submit(ctx, s.fetchKey(), func(ctx context.Context) (interface{}, error) {
		return s.acc.NextPage(ctx)
	})
}

// SwitchTable points the session at another table, dropping every retained page
func (s *QueryService) SwitchTable(ctx context.Context, tableName string) error {
	meta, err := s.client.DescribeTable(ctx, tableName)
	if err != nil {
		return fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}

	s.runner.Cancel(s.fetchKey())
	s.acc.SetTable(meta)

	s.mu.Lock()
	s.meta = meta
	s.mu.Unlock()

	s.logger.Infof("Switched to table %s", tableName)
	return nil
}

func (s *QueryService) SaveQuery(ctx context.Context, name, description string, params *models.QueryParameters) (*models.SavedQuery, error) {
	return s.saved.Save(ctx, name, description, params)
}

// ReplayHistory runs a history entry again
func (s *QueryService) ReplayHistory(ctx context.Context, key string) (*results.Page, error) {
	entry, err := s.history.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, &entry.QueryParameters)
}

// ReplayLast runs the most recent history entry again
func (s *QueryService) ReplayLast(ctx context.Context) (*results.Page, error) {
	entry, err := s.history.Last(ctx)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, &entry.QueryParameters)
}

// ReplaySaved runs a saved query by name
func (s *QueryService) ReplaySaved(ctx context.Context, name string) (*results.Page, error) {
	saved, err := s.saved.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, &saved.QueryParameters)
}

func (s *QueryService) fetchKey() string {
	return worker.GroupKey(s.session.SessionID, OpFetch)
}
