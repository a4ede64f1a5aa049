// Package repositories provides data access for the engine's own store.
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/asksql/asksql-engine/pkg/apperrors"
	"github.com/asksql/asksql-engine/pkg/database"
	"github.com/asksql/asksql-engine/pkg/models"
)

// HistoryRepository provides data access for the per-user query history.
// Every operation is scoped by user_id at the SQL layer; no identity can
// read or modify another identity's records.
type HistoryRepository interface {
	Create(ctx context.Context, record *models.QueryRecord) error
	List(ctx context.Context, userID string, page, perPage int) ([]*models.QueryRecord, int, error)
	GetByID(ctx context.Context, userID string, recordID uuid.UUID) (*models.QueryRecord, error)
	Search(ctx context.Context, userID, term string) ([]*models.QueryRecord, error)
	FilterByStatus(ctx context.Context, userID, status string) ([]*models.QueryRecord, error)
	Delete(ctx context.Context, userID string, recordID uuid.UUID) error
	Clear(ctx context.Context, userID string) (int64, error)
}

type historyRepository struct {
	db *database.DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *database.DB) HistoryRepository {
	return &historyRepository{db: db}
}

var _ HistoryRepository = (*historyRepository)(nil)

const recordColumns = `id, user_id, question, sql_query, status, raw_rows, results, execution_time, error_message, created_date`

func (r *historyRepository) Create(ctx context.Context, record *models.QueryRecord) error {
	if record.UserID == "" {
		return fmt.Errorf("record has no user_id")
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedDate.IsZero() {
		record.CreatedDate = time.Now().UTC()
	}

	rawRowsJSON, err := marshalRawRows(record.RawRows)
	if err != nil {
		return fmt.Errorf("failed to marshal raw_rows: %w", err)
	}

	query := `
		INSERT INTO query_history (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.UserID,
		record.Question,
		record.SQLQuery,
		record.Status,
		rawRowsJSON,
		record.Results,
		record.ExecutionTime,
		record.ErrorMessage,
		record.CreatedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	return nil
}

func (r *historyRepository) List(ctx context.Context, userID string, page, perPage int) ([]*models.QueryRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	var total int
	countQuery := `SELECT COUNT(*) FROM query_history WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count history entries: %w", err)
	}

	dataQuery := `
		SELECT ` + recordColumns + `
		FROM query_history
		WHERE user_id = $1
		ORDER BY created_date DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, dataQuery, userID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list history entries: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *historyRepository) GetByID(ctx context.Context, userID string, recordID uuid.UUID) (*models.QueryRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM query_history
		WHERE id = $1 AND user_id = $2`

	rows, err := r.db.Query(ctx, query, recordID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.ErrNotFound
	}

	return records[0], nil
}

func (r *historyRepository) Search(ctx context.Context, userID, term string) ([]*models.QueryRecord, error) {
	pattern := "%" + escapeLikePattern(term) + "%"

	query := `
		SELECT ` + recordColumns + `
		FROM query_history
		WHERE user_id = $1
		  AND (question ILIKE $2 OR sql_query ILIKE $2)
		ORDER BY created_date DESC`

	rows, err := r.db.Query(ctx, query, userID, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *historyRepository) FilterByStatus(ctx context.Context, userID, status string) ([]*models.QueryRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM query_history
		WHERE user_id = $1 AND status = $2
		ORDER BY created_date DESC`

	rows, err := r.db.Query(ctx, query, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to filter history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *historyRepository) Delete(ctx context.Context, userID string, recordID uuid.UUID) error {
	query := `DELETE FROM query_history WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, recordID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *historyRepository) Clear(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM query_history WHERE user_id = $1`

	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanRecords(rows pgx.Rows) ([]*models.QueryRecord, error) {
	var records []*models.QueryRecord

	for rows.Next() {
		var record models.QueryRecord
		var rawRowsJSON []byte

		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Question,
			&record.SQLQuery,
			&record.Status,
			&rawRowsJSON,
			&record.Results,
			&record.ExecutionTime,
			&record.ErrorMessage,
			&record.CreatedDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		record.RawRows = []map[string]any{}
		if len(rawRowsJSON) > 0 && string(rawRowsJSON) != "null" {
			if jsonErr := json.Unmarshal(rawRowsJSON, &record.RawRows); jsonErr != nil {
				return nil, fmt.Errorf("failed to unmarshal raw_rows: %w", jsonErr)
			}
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history entries: %w", err)
	}

	if records == nil {
		records = []*models.QueryRecord{}
	}
	return records, nil
}

// marshalRawRows marshals result rows to JSON, storing an empty array for
// nil input so the column is never NULL.
func marshalRawRows(rows []map[string]any) ([]byte, error) {
	if rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(rows)
}

// escapeLikePattern escapes LIKE wildcards so a search term matches as a
// literal substring.
func escapeLikePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
