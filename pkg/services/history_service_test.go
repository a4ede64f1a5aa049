package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/asksql/asksql-engine/pkg/apperrors"
	"github.com/asksql/asksql-engine/pkg/models"
)

func seedHistory(repo *mockHistoryRepo, userID string, n int) {
	for i := 0; i < n; i++ {
		repo.records = append(repo.records, &models.QueryRecord{
			ID:     uuid.New(),
			UserID: userID,
			Status: models.StatusSuccess,
		})
	}
}

func TestHistoryService_List_PaginationMath(t *testing.T) {
	repo := &mockHistoryRepo{}
	seedHistory(repo, "user-1", 45)
	svc := NewHistoryService(repo, zap.NewNop())

	page, err := svc.List(context.Background(), "user-1", 2, 20)

	require.NoError(t, err)
	assert.Equal(t, 45, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 20, page.PerPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 20)
}

func TestHistoryService_List_LastPartialPage(t *testing.T) {
	repo := &mockHistoryRepo{}
	seedHistory(repo, "user-1", 45)
	svc := NewHistoryService(repo, zap.NewNop())

	page, err := svc.List(context.Background(), "user-1", 3, 20)

	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
}

func TestHistoryService_List_DefaultsAppliedToBadParams(t *testing.T) {
	repo := &mockHistoryRepo{}
	seedHistory(repo, "user-1", 5)
	svc := NewHistoryService(repo, zap.NewNop())

	tests := []struct {
		name    string
		page    int
		perPage int
	}{
		{"zero page", 0, 20},
		{"negative page", -3, 20},
		{"zero per_page", 1, 0},
		{"per_page above cap", 1, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.List(context.Background(), "user-1", tt.page, tt.perPage)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, page.Page, 1)
			assert.Equal(t, defaultPerPage, page.PerPage)
		})
	}
}

func TestHistoryService_List_EmptyHistory(t *testing.T) {
	svc := NewHistoryService(&mockHistoryRepo{}, zap.NewNop())

	page, err := svc.List(context.Background(), "user-1", 1, 20)

	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.TotalPages)
	assert.Empty(t, page.Items)
}

func TestHistoryService_FilterByStatus_RejectsUnknownStatus(t *testing.T) {
	svc := NewHistoryService(&mockHistoryRepo{}, zap.NewNop())

	_, err := svc.FilterByStatus(context.Background(), "user-1", "pending")

	require.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestHistoryService_Delete_ScopedToUser(t *testing.T) {
	repo := &mockHistoryRepo{}
	recordID := uuid.New()
	repo.records = append(repo.records, &models.QueryRecord{ID: recordID, UserID: "owner"})
	svc := NewHistoryService(repo, zap.NewNop())

	err := svc.Delete(context.Background(), "intruder", recordID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	err = svc.Delete(context.Background(), "owner", recordID)
	require.NoError(t, err)
}

func TestHistoryService_Clear_ReportsDeletedCount(t *testing.T) {
	repo := &mockHistoryRepo{}
	seedHistory(repo, "user-1", 3)
	seedHistory(repo, "user-2", 2)
	svc := NewHistoryService(repo, zap.NewNop())

	deleted, err := svc.Clear(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Len(t, repo.records, 2, "other users' history untouched")
}
