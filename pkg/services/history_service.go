package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asksql/asksql-engine/pkg/apperrors"
	"github.com/asksql/asksql-engine/pkg/models"
	"github.com/asksql/asksql-engine/pkg/repositories"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// HistoryService exposes a user's query history. All operations are scoped
// to the calling identity.
type HistoryService interface {
	List(ctx context.Context, userID string, page, perPage int) (*models.HistoryPage, error)
	Get(ctx context.Context, userID string, recordID uuid.UUID) (*models.QueryRecord, error)
	Search(ctx context.Context, userID, term string) ([]*models.QueryRecord, error)
	FilterByStatus(ctx context.Context, userID, status string) ([]*models.QueryRecord, error)
	Delete(ctx context.Context, userID string, recordID uuid.UUID) error
	Clear(ctx context.Context, userID string) (int64, error)
}

type historyService struct {
	historyRepo repositories.HistoryRepository
	logger      *zap.Logger
}

// NewHistoryService creates a new history service.
func NewHistoryService(historyRepo repositories.HistoryRepository, logger *zap.Logger) HistoryService {
	return &historyService{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

func (s *historyService) List(ctx context.Context, userID string, page, perPage int) (*models.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	items, total, err := s.historyRepo.List(ctx, userID, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	totalPages := (total + perPage - 1) / perPage

	return &models.HistoryPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

func (s *historyService) Get(ctx context.Context, userID string, recordID uuid.UUID) (*models.QueryRecord, error) {
	return s.historyRepo.GetByID(ctx, userID, recordID)
}

func (s *historyService) Search(ctx context.Context, userID, term string) ([]*models.QueryRecord, error) {
	records, err := s.historyRepo.Search(ctx, userID, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	return records, nil
}

func (s *historyService) FilterByStatus(ctx context.Context, userID, status string) ([]*models.QueryRecord, error) {
	if status != models.StatusSuccess && status != models.StatusError {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
	}

	records, err := s.historyRepo.FilterByStatus(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to filter history: %w", err)
	}
	return records, nil
}

func (s *historyService) Delete(ctx context.Context, userID string, recordID uuid.UUID) error {
	if err := s.historyRepo.Delete(ctx, userID, recordID); err != nil {
		return err
	}

	s.logger.Info("Deleted history entry",
		zap.String("id", recordID.String()),
		zap.String("user_id", userID),
	)
	return nil
}

func (s *historyService) Clear(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.historyRepo.Clear(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	s.logger.Info("Cleared history",
		zap.String("user_id", userID),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}
