// Package datasource runs validated SQL against the target database and
// discovers its schema. The engine only ever reads; write statements are
// rejected upstream by sqlguard and never reach this package.
package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/asksql/asksql-engine/pkg/logging"
)

// ExecutionError is a database-reported failure: bad syntax the engine
// rejects, a timeout, or a lost connection. The message is sanitized of
// credentials before it is stored or displayed.
type ExecutionError struct {
	Message string
	// ElapsedMs is the time spent before the failure, when known.
	ElapsedMs int64
	Cause     error
}

func (e *ExecutionError) Error() string {
	return e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// QueryExecutionResult holds the rows and timing of one executed query.
type QueryExecutionResult struct {
	Columns   []string
	Rows      []map[string]any
	RowCount  int
	ElapsedMs int64
	// Truncated is true when the result hit the configured row cap and
	// was cut off rather than failed.
	Truncated bool
}

// QueryExecutor executes read-only SQL against the target datasource.
// Use this interface for dependency injection to enable mocking in tests.
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error)
}

// Executor provides PostgreSQL query execution with a bounded timeout and
// row cap. Safe for concurrent use; the pool serializes access.
type Executor struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	maxRows int
	logger  *zap.Logger
}

// NewExecutor connects to the target datasource and returns an executor.
func NewExecutor(ctx context.Context, connStr string, timeout time.Duration, maxRows int, logger *zap.Logger) (*Executor, error) {
	if connStr == "" {
		return nil, fmt.Errorf("datasource connection string is required")
	}
	if maxRows <= 0 {
		return nil, fmt.Errorf("max rows must be positive")
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to datasource: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping datasource: %w", err)
	}

	return &Executor{
		pool:    pool,
		timeout: timeout,
		maxRows: maxRows,
		logger:  logger.Named("datasource"),
	}, nil
}

// NewExecutorWithPool wraps an existing pool (for tests or shared pools).
func NewExecutorWithPool(pool *pgxpool.Pool, timeout time.Duration, maxRows int, logger *zap.Logger) *Executor {
	return &Executor{
		pool:    pool,
		timeout: timeout,
		maxRows: maxRows,
		logger:  logger.Named("datasource"),
	}
}

// ExecuteQuery runs an already-validated SQL query and returns the rows
// plus elapsed wall-clock time. Callers must not skip validation; this
// method does not re-validate.
func (e *Executor) ExecuteQuery(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// Fetch one row past the cap so truncation is distinguishable from a
	// result that exactly fills it.
	queryToRun := fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", sqlQuery, e.maxRows+1)

	start := time.Now()

	rows, err := e.pool.Query(ctx, queryToRun)
	if err != nil {
		return nil, e.executionError(err, start)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, e.executionError(err, start)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col] = values[i]
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, e.executionError(err, start)
	}

	elapsed := time.Since(start).Milliseconds()

	truncated := false
	if len(resultRows) > e.maxRows {
		resultRows = resultRows[:e.maxRows]
		truncated = true
	}

	e.logger.Debug("Executed query",
		zap.String("sql", logging.SanitizeQuery(sqlQuery)),
		zap.Int("rows", len(resultRows)),
		zap.Bool("truncated", truncated),
		zap.Int64("elapsed_ms", elapsed))

	return &QueryExecutionResult{
		Columns:   columns,
		Rows:      resultRows,
		RowCount:  len(resultRows),
		ElapsedMs: elapsed,
		Truncated: truncated,
	}, nil
}

// Pool returns the underlying connection pool so schema discovery can share
// it.
func (e *Executor) Pool() *pgxpool.Pool {
	return e.pool
}

// Close releases the underlying pool.
func (e *Executor) Close() {
	e.pool.Close()
}

func (e *Executor) executionError(err error, start time.Time) *ExecutionError {
	elapsed := time.Since(start).Milliseconds()

	e.logger.Warn("Query execution failed",
		zap.Int64("elapsed_ms", elapsed),
		zap.String("error", logging.SanitizeError(err)))

	return &ExecutionError{
		Message:   logging.SanitizeError(err),
		ElapsedMs: elapsed,
		Cause:     err,
	}
}

// Ensure Executor implements QueryExecutor at compile time.
var _ QueryExecutor = (*Executor)(nil)
