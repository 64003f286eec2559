package services

import (
	"context"
	"fmt"

	"dynoquery/dal"
	"dynoquery/models"
	"dynoquery/repository"
	"dynoquery/utils/logger"
	"dynoquery/worker"
)

// Service implements ServiceContainerInterface
type Service struct {
	sessionService SessionServiceInterface
	libraryService LibraryServiceInterface
	repos          repository.RepositoryContainerInterface
	clients        dal.ClientFactory
	runner         *worker.Runner
	logger         logger.Logger
	config         *models.Config
}

// NewService creates a new service container with all dependencies injected
func NewService(
	repoContainer repository.RepositoryContainerInterface,
	clients dal.ClientFactory,
	runner *worker.Runner,
	logger logger.Logger,
	config *models.Config,
) *Service {
	return &Service{
		sessionService: NewSessionService(repoContainer.GetSessionRepository(), clients, logger),
		libraryService: NewLibraryService(repoContainer.GetHistoryRepository(), repoContainer.GetSavedQueryRepository(), logger),
		repos:          repoContainer,
		clients:        clients,
		runner:         runner,
		logger:         logger,
		config:         config,
	}
}

// GetSessionService returns the session service interface
func (s *Service) GetSessionService() SessionServiceInterface {
	return s.sessionService
}

// GetLibraryService returns the library service interface
func (s *Service) GetLibraryService() LibraryServiceInterface {
	return s.libraryService
}

// OpenQuery connects to a stored session's table and returns its query service
func (s *Service) OpenQuery(ctx context.Context, sessionID string) (QueryServiceInterface, error) {
	session, err := s.repos.GetSessionRepository().GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	client, err := s.clients(ctx, session)
	if err != nil {
		return nil, err
	}
	return NewQueryService(ctx, session, client, s.repos.GetHistoryRepository(), s.repos.GetSavedQueryRepository(),
		s.runner, int32(s.config.PageSize), s.logger)
}

// Results returns the channel background query results are delivered on
func (s *Service) Results() <-chan worker.Result {
	return s.runner.Results()
}

// Close stops every background task
func (s *Service) Close() {
	s.runner.Close()
}
