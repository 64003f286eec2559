package services

import (
	"context"

	"dynoquery/dal"
	"dynoquery/models"
	"dynoquery/repository"
	"dynoquery/utils/logger"
)

type SessionService struct {
	sessionRepo repository.SessionRepositoryInterface
	clients     dal.ClientFactory
	logger      logger.Logger
}

func NewSessionService(sessionRepo repository.SessionRepositoryInterface, clients dal.ClientFactory, logger logger.Logger) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		clients:     clients,
		logger:      logger,
	}
}

func (s *SessionService) CreateGroup(ctx context.Context, name string) (*models.SessionGroup, error) {
	return s.sessionRepo.CreateGroup(ctx, &models.SessionGroup{Name: name})
}

func (s *SessionService) ListGroups(ctx context.Context, page, pageSize int, search string) (*models.Page[models.SessionGroup], error) {
	return s.sessionRepo.ListGroups(ctx, page, pageSize, search)
}

func (s *SessionService) RenameGroup(ctx context.Context, id, name string) error {
	return s.sessionRepo.RenameGroup(ctx, id, name)
}

// DeleteGroup deletes a group together with its sessions
func (s *SessionService) DeleteGroup(ctx context.Context, id string) (int64, error) {
	return s.sessionRepo.DeleteGroup(ctx, id)
}

func (s *SessionService) CreateSession(ctx context.Context, session *models.Session) (*models.Session, error) {
	return s.sessionRepo.CreateSession(ctx, session)
}

func (s *SessionService) ListSessions(ctx context.Context, page, pageSize int, search string) (*models.Page[models.Session], error) {
	return s.sessionRepo.ListSessions(ctx, page, pageSize, search)
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return s.sessionRepo.GetSession(ctx, id)
}

func (s *SessionService) UpdateSession(ctx context.Context, id string, update *models.SessionUpdate) (*models.Session, error) {
	return s.sessionRepo.UpdateSession(ctx, id, update)
}

func (s *SessionService) DeleteSession(ctx context.Context, id string) error {
	return s.sessionRepo.DeleteSession(ctx, id)
}

// ListTables lists the tables visible with a session's region and credentials
func (s *SessionService) ListTables(ctx context.Context, id string) ([]string, error) {
	session, err := s.sessionRepo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	client, err := s.clients(ctx, session)
	if err != nil {
		return nil, err
	}
	s.logger.Debugf("Listing tables for session %s in %s", id, session.Region)
	return client.ListTables(ctx)
}
