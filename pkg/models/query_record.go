package models

import (
	"time"

	"github.com/google/uuid"
)

// Query status values. A record's status is set once when the pipeline
// completes and is never revised.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// QueryRecord is the persisted outcome of one natural-language question
// cycle. Records are immutable after creation; history entries are only
// ever deleted, never edited.
type QueryRecord struct {
	ID     uuid.UUID `json:"id"`
	UserID string    `json:"user_id"`

	// The question as submitted and the SQL the model produced for it.
	// SQLQuery is empty when generation failed.
	Question string `json:"question"`
	SQLQuery string `json:"sql_query"`

	Status string `json:"status"`

	// RawRows holds the executed query's result rows, keyed by column
	// name. Empty on error or when the query matched nothing.
	RawRows []map[string]any `json:"raw_rows"`

	// Results is an optional natural-language summary of the answer.
	Results *string `json:"results,omitempty"`

	// ExecutionTime is the round-trip time in milliseconds. Never negative.
	ExecutionTime int64 `json:"execution_time"`

	// ErrorMessage is set only when Status is StatusError.
	ErrorMessage *string `json:"error_message,omitempty"`

	CreatedDate time.Time `json:"created_date"`
}

// HistoryPage is one page of a user's query history.
type HistoryPage struct {
	Items      []*QueryRecord `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}
