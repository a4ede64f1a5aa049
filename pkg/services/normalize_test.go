package services

import (
	"reflect"
	"testing"

	"github.com/asksql/asksql-engine/pkg/datasource"
	"github.com/asksql/asksql-engine/pkg/models"
)

func TestNormalize_Success(t *testing.T) {
	result := &datasource.QueryExecutionResult{
		Columns:  []string{"a"},
		Rows:     []map[string]any{{"a": 1}, {"a": 2}},
		RowCount: 2,
	}

	record := Normalize("how many?", "SELECT a FROM t", result, nil, "There are two rows.", 42)

	if record.Status != models.StatusSuccess {
		t.Errorf("status = %q, want %q", record.Status, models.StatusSuccess)
	}
	if len(record.RawRows) != 2 {
		t.Errorf("raw rows = %d, want 2", len(record.RawRows))
	}
	if record.Results == nil || *record.Results != "There are two rows." {
		t.Errorf("results = %v, want summary text", record.Results)
	}
	if record.ExecutionTime != 42 {
		t.Errorf("execution time = %d, want 42", record.ExecutionTime)
	}
	if record.ErrorMessage != nil {
		t.Errorf("error message = %q, want nil", *record.ErrorMessage)
	}
}

func TestNormalize_SuccessWithoutSummary(t *testing.T) {
	result := &datasource.QueryExecutionResult{
		Rows:     []map[string]any{{"a": 1}},
		RowCount: 1,
	}

	record := Normalize("q", "SELECT 1", result, nil, "", 5)

	if record.Results == nil || *record.Results != "Returned 1 rows." {
		t.Errorf("results = %v, want fallback text", record.Results)
	}
}

func TestNormalize_SuccessTruncated(t *testing.T) {
	result := &datasource.QueryExecutionResult{
		Rows:      []map[string]any{{"a": 1}},
		RowCount:  1,
		Truncated: true,
	}

	record := Normalize("q", "SELECT 1", result, nil, "One row.", 5)

	want := "One row. Results were truncated to the first 1 rows."
	if record.Results == nil || *record.Results != want {
		t.Errorf("results = %v, want %q", record.Results, want)
	}
}

func TestNormalize_ExecutionError(t *testing.T) {
	execErr := &datasource.ExecutionError{
		Message:   `relation "nonexistent" does not exist`,
		ElapsedMs: 12,
	}

	record := Normalize("q", "SELECT * FROM nonexistent", nil, execErr, "", 12)

	if record.Status != models.StatusError {
		t.Errorf("status = %q, want %q", record.Status, models.StatusError)
	}
	if record.ErrorMessage == nil || *record.ErrorMessage != execErr.Error() {
		t.Errorf("error message = %v, want %q", record.ErrorMessage, execErr.Error())
	}
	if record.Results != nil {
		t.Errorf("results = %q, want nil on error", *record.Results)
	}
	if len(record.RawRows) != 0 {
		t.Errorf("raw rows = %d, want empty on error", len(record.RawRows))
	}
	if record.RawRows == nil {
		t.Error("raw rows must be an empty slice, not nil")
	}
}

func TestNormalize_EmptyErrorMessageGetsFallback(t *testing.T) {
	record := Normalize("q", "SELECT 1", nil, &datasource.ExecutionError{}, "", 0)

	if record.ErrorMessage == nil || *record.ErrorMessage != genericExecutionError {
		t.Errorf("error message = %v, want %q", record.ErrorMessage, genericExecutionError)
	}
}

func TestNormalize_ClampsNegativeElapsed(t *testing.T) {
	record := Normalize("q", "SELECT 1", nil, nil, "", -7)

	if record.ExecutionTime != 0 {
		t.Errorf("execution time = %d, want 0", record.ExecutionTime)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	result := &datasource.QueryExecutionResult{
		Rows:     []map[string]any{{"n": int64(3)}},
		RowCount: 1,
	}

	first := Normalize("q", "SELECT 1", result, nil, "Three.", 9)
	second := Normalize("q", "SELECT 1", result, nil, "Three.", 9)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different records")
	}
}
