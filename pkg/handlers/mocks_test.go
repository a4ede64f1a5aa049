package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/asksql/asksql-engine/pkg/models"
)

// mockQueryService is a configurable mock for handler tests.
type mockQueryService struct {
	record *models.QueryRecord
	err    error

	handleCalls  int
	lastUserID   string
	lastQuestion string
}

func (m *mockQueryService) Handle(ctx context.Context, userID, question string) (*models.QueryRecord, error) {
	m.handleCalls++
	m.lastUserID = userID
	m.lastQuestion = question
	if m.err != nil {
		return nil, m.err
	}
	if m.record != nil {
		return m.record, nil
	}
	results := "Returned 0 rows."
	return &models.QueryRecord{
		ID:       uuid.New(),
		UserID:   userID,
		Question: question,
		Status:   models.StatusSuccess,
		RawRows:  []map[string]any{},
		Results:  &results,
	}, nil
}

// mockHistoryService is a configurable mock for handler tests.
type mockHistoryService struct {
	page    *models.HistoryPage
	record  *models.QueryRecord
	records []*models.QueryRecord
	deleted int64
	err     error

	searchCalls int
	filterCalls int
	lastTerm    string
	lastStatus  string
}

func (m *mockHistoryService) List(ctx context.Context, userID string, page, perPage int) (*models.HistoryPage, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.page != nil {
		return m.page, nil
	}
	return &models.HistoryPage{
		Items:   []*models.QueryRecord{},
		Page:    page,
		PerPage: perPage,
	}, nil
}

func (m *mockHistoryService) Get(ctx context.Context, userID string, recordID uuid.UUID) (*models.QueryRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

func (m *mockHistoryService) Search(ctx context.Context, userID, term string) ([]*models.QueryRecord, error) {
	m.searchCalls++
	m.lastTerm = term
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockHistoryService) FilterByStatus(ctx context.Context, userID, status string) ([]*models.QueryRecord, error) {
	m.filterCalls++
	m.lastStatus = status
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockHistoryService) Delete(ctx context.Context, userID string, recordID uuid.UUID) error {
	return m.err
}

func (m *mockHistoryService) Clear(ctx context.Context, userID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.deleted, nil
}

// mockSchemaService is a configurable mock for handler tests.
type mockSchemaService struct {
	schema *models.SchemaResponse
	err    error

	refreshCalls int
}

func (m *mockSchemaService) GetSchema(ctx context.Context) (*models.SchemaResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.schema != nil {
		return m.schema, nil
	}
	return &models.SchemaResponse{Tables: []models.TableSchema{}}, nil
}

func (m *mockSchemaService) SchemaText(ctx context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "Table: players | Columns: name", nil
}

func (m *mockSchemaService) Refresh() {
	m.refreshCalls++
}
