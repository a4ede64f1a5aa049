package services

import (
	"fmt"

	"github.com/asksql/asksql-engine/pkg/datasource"
	"github.com/asksql/asksql-engine/pkg/models"
)

const genericExecutionError = "query execution failed"

// Normalize converts the outcome of one pipeline run into the canonical
// record shape, regardless of which step produced it. The LLM's summary
// format and the executor's row format differ; this is the single place
// that reconciles them.
//
// Pure function: calling it twice on the same inputs produces structurally
// identical output.
func Normalize(question, sqlQuery string, result *datasource.QueryExecutionResult, execErr error, summary string, elapsedMs int64) *models.QueryRecord {
	if elapsedMs < 0 {
		elapsedMs = 0
	}

	record := &models.QueryRecord{
		Question:      question,
		SQLQuery:      sqlQuery,
		RawRows:       []map[string]any{},
		ExecutionTime: elapsedMs,
	}

	if execErr != nil {
		message := execErr.Error()
		if message == "" {
			message = genericExecutionError
		}
		record.Status = models.StatusError
		record.ErrorMessage = &message
		return record
	}

	record.Status = models.StatusSuccess
	if result != nil && result.Rows != nil {
		record.RawRows = result.Rows
	}

	text := summary
	if text == "" {
		text = fmt.Sprintf("Returned %d rows.", len(record.RawRows))
	}
	if result != nil && result.Truncated {
		text += fmt.Sprintf(" Results were truncated to the first %d rows.", result.RowCount)
	}
	record.Results = &text

	return record
}
