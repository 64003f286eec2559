package services

import (
	"context"

	"dynoquery/models"
	"dynoquery/repository"
	"dynoquery/utils/logger"
)

// LibraryService browses and edits the query history and saved queries
type LibraryService struct {
	historyRepo repository.HistoryRepositoryInterface
	savedRepo   repository.SavedQueryRepositoryInterface
	logger      logger.Logger
}

func NewLibraryService(historyRepo repository.HistoryRepositoryInterface, savedRepo repository.SavedQueryRepositoryInterface, logger logger.Logger) *LibraryService {
	return &LibraryService{
		historyRepo: historyRepo,
		savedRepo:   savedRepo,
		logger:      logger,
	}
}

func (s *LibraryService) ListHistory(ctx context.Context, page, pageSize int) (*models.Page[models.HistoryEntry], error) {
	return s.historyRepo.List(ctx, page, pageSize)
}

func (s *LibraryService) DeleteHistory(ctx context.Context, key string) error {
	return s.historyRepo.Delete(ctx, key)
}

func (s *LibraryService) ClearHistory(ctx context.Context) (int64, error) {
	return s.historyRepo.Clear(ctx)
}

func (s *LibraryService) ListSaved(ctx context.Context, page, pageSize int, search string) (*models.Page[models.SavedQuery], error) {
	return s.savedRepo.List(ctx, page, pageSize, search)
}

func (s *LibraryService) GetSaved(ctx context.Context, name string) (*models.SavedQuery, error) {
	return s.savedRepo.GetByName(ctx, name)
}

// RenameSaved renames the saved query currently called name
func (s *LibraryService) RenameSaved(ctx context.Context, name, newName string) error {
	saved, err := s.savedRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if err := s.savedRepo.Rename(ctx, saved.Key, newName); err != nil {
		return err
	}
	s.logger.Infof("Saved query renamed: %s -> %s", name, newName)
	return nil
}

func (s *LibraryService) DescribeSaved(ctx context.Context, name, description string) error {
	saved, err := s.savedRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	return s.savedRepo.UpdateDescription(ctx, saved.Key, description)
}

func (s *LibraryService) DeleteSaved(ctx context.Context, name string) error {
	saved, err := s.savedRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	return s.savedRepo.Delete(ctx, saved.Key)
}
