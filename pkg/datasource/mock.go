package datasource

import (
	"context"
)

// MockQueryExecutor is a configurable mock for testing execution paths.
// Set ExecuteQueryFunc to control behavior in tests.
type MockQueryExecutor struct {
	// ExecuteQueryFunc is called when ExecuteQuery is invoked.
	// If nil, returns an empty result and nil error.
	ExecuteQueryFunc func(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error)

	// Call tracking for verification
	ExecuteQueryCalls int
	LastSQL           string
}

// ExecuteQuery implements QueryExecutor.
func (m *MockQueryExecutor) ExecuteQuery(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error) {
	m.ExecuteQueryCalls++
	m.LastSQL = sqlQuery
	if m.ExecuteQueryFunc != nil {
		return m.ExecuteQueryFunc(ctx, sqlQuery)
	}
	return &QueryExecutionResult{Rows: []map[string]any{}}, nil
}

// Ensure MockQueryExecutor implements QueryExecutor at compile time.
var _ QueryExecutor = (*MockQueryExecutor)(nil)
