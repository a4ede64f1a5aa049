package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/asksql/asksql-engine/pkg/apperrors"
	"github.com/asksql/asksql-engine/pkg/models"
)

// mockHistoryRepo is an in-memory history repository for service tests.
type mockHistoryRepo struct {
	records   []*models.QueryRecord
	createErr error

	createCalls int
	listCalls   int
}

func (m *mockHistoryRepo) Create(ctx context.Context, record *models.QueryRecord) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockHistoryRepo) List(ctx context.Context, userID string, page, perPage int) ([]*models.QueryRecord, int, error) {
	m.listCalls++
	var mine []*models.QueryRecord
	for _, r := range m.records {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	start := (page - 1) * perPage
	if start >= len(mine) {
		return []*models.QueryRecord{}, len(mine), nil
	}
	end := start + perPage
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], len(mine), nil
}

func (m *mockHistoryRepo) GetByID(ctx context.Context, userID string, recordID uuid.UUID) (*models.QueryRecord, error) {
	for _, r := range m.records {
		if r.UserID == userID && r.ID == recordID {
			return r, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockHistoryRepo) Search(ctx context.Context, userID, term string) ([]*models.QueryRecord, error) {
	return nil, nil
}

func (m *mockHistoryRepo) FilterByStatus(ctx context.Context, userID, status string) ([]*models.QueryRecord, error) {
	var matched []*models.QueryRecord
	for _, r := range m.records {
		if r.UserID == userID && r.Status == status {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (m *mockHistoryRepo) Delete(ctx context.Context, userID string, recordID uuid.UUID) error {
	for i, r := range m.records {
		if r.UserID == userID && r.ID == recordID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockHistoryRepo) Clear(ctx context.Context, userID string) (int64, error) {
	var kept []*models.QueryRecord
	var deleted int64
	for _, r := range m.records {
		if r.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return deleted, nil
}

// mockSchemaSource returns a fixed schema, tracking discovery calls.
type mockSchemaSource struct {
	schema *models.SchemaResponse
	err    error

	discoverCalls int
}

func (m *mockSchemaSource) DiscoverSchema(ctx context.Context) (*models.SchemaResponse, error) {
	m.discoverCalls++
	if m.err != nil {
		return nil, m.err
	}
	if m.schema != nil {
		return m.schema, nil
	}
	return &models.SchemaResponse{
		Tables: []models.TableSchema{
			{
				Name: "players",
				Columns: []models.ColumnSchema{
					{Name: "name", Type: "text"},
					{Name: "overall", Type: "integer"},
				},
			},
		},
	}, nil
}

// mockSchemaService bypasses caching for orchestrator tests.
type mockSchemaService struct {
	text    string
	textErr error

	textCalls    int
	refreshCalls int
}

func (m *mockSchemaService) GetSchema(ctx context.Context) (*models.SchemaResponse, error) {
	return nil, nil
}

func (m *mockSchemaService) SchemaText(ctx context.Context) (string, error) {
	m.textCalls++
	if m.textErr != nil {
		return "", m.textErr
	}
	if m.text == "" {
		return "Table: players | Columns: name, overall", nil
	}
	return m.text, nil
}

func (m *mockSchemaService) Refresh() {
	m.refreshCalls++
}
