package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/asksql/asksql-engine/pkg/apperrors"
	"github.com/asksql/asksql-engine/pkg/datasource"
	"github.com/asksql/asksql-engine/pkg/llm"
	"github.com/asksql/asksql-engine/pkg/logging"
	"github.com/asksql/asksql-engine/pkg/models"
	"github.com/asksql/asksql-engine/pkg/repositories"
	"github.com/asksql/asksql-engine/pkg/sqlguard"
)

// User-safe messages for pipeline failures. Provider internals are never
// surfaced to the client.
const (
	msgGenerationFailed  = "the model could not produce a valid SQL query for this question"
	msgSchemaUnavailable = "the database schema could not be loaded; please try again"
	msgBlockedUnsafe     = "the generated query was blocked for safety and was not executed"
)

// QueryService runs the full question-to-record pipeline: LLM generation,
// safety validation, execution, normalization, and history persistence.
type QueryService interface {
	// Handle processes one question for one identity. It returns an error
	// only for input errors (empty or injection-flagged questions); every
	// other failure is absorbed into the returned record with an error
	// status, so the caller always has something to render.
	Handle(ctx context.Context, userID, question string) (*models.QueryRecord, error)
}

// QueryConfig holds the orchestrator's tunables.
type QueryConfig struct {
	// LLMTimeout bounds the generation call, independent of the
	// executor's own query timeout.
	LLMTimeout  time.Duration
	Temperature float64
}

type queryService struct {
	llmClient   llm.LLMClient
	executor    datasource.QueryExecutor
	historyRepo repositories.HistoryRepository
	schemaSvc   SchemaService
	aliases     *AliasMapper
	cfg         QueryConfig
	logger      *zap.Logger
}

// NewQueryService creates the query orchestrator with its collaborators.
func NewQueryService(
	llmClient llm.LLMClient,
	executor datasource.QueryExecutor,
	historyRepo repositories.HistoryRepository,
	schemaSvc SchemaService,
	aliases *AliasMapper,
	cfg QueryConfig,
	logger *zap.Logger,
) QueryService {
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 60 * time.Second
	}
	return &queryService{
		llmClient:   llmClient,
		executor:    executor,
		historyRepo: historyRepo,
		schemaSvc:   schemaSvc,
		aliases:     aliases,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *queryService) Handle(ctx context.Context, userID, question string) (*models.QueryRecord, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.ErrEmptyQuestion
	}

	// A question that is itself an injection payload never reaches any
	// collaborator. Input error, not persisted.
	if check := sqlguard.CheckQuestion(question); check != nil {
		s.logger.Warn("Rejected question with injection pattern",
			zap.String("user_id", userID),
			zap.String("fingerprint", check.Fingerprint),
		)
		return nil, apperrors.ErrUnsafeQuestion
	}

	start := time.Now()

	sqlQuery, pipelineErr := s.generateSQL(ctx, question)

	var result *datasource.QueryExecutionResult
	if pipelineErr == nil {
		verdict := sqlguard.Validate(sqlQuery)
		if !verdict.Allowed {
			s.logger.Warn("Blocked unsafe generated SQL",
				zap.String("user_id", userID),
				zap.String("reason", verdict.Reason),
				zap.String("sql", logging.SanitizeQuery(sqlQuery)),
			)
			pipelineErr = &datasource.ExecutionError{
				Message: msgBlockedUnsafe + ": " + verdict.Reason,
			}
		} else {
			result, pipelineErr = s.executor.ExecuteQuery(ctx, verdict.NormalizedSQL)
			sqlQuery = verdict.NormalizedSQL
		}
	}

	elapsed := time.Since(start).Milliseconds()
	record := Normalize(question, sqlQuery, result, pipelineErr, "", elapsed)
	record.UserID = userID

	// A completed execution is recorded even if the caller has gone away,
	// and a history write failure never fails the response.
	persistCtx := context.WithoutCancel(ctx)
	if err := s.historyRepo.Create(persistCtx, record); err != nil {
		s.logger.Warn("Failed to persist history entry",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	s.logger.Info("Handled query",
		zap.String("user_id", userID),
		zap.String("status", record.Status),
		zap.Int("rows", len(record.RawRows)),
		zap.Int64("elapsed_ms", record.ExecutionTime),
	)

	return record, nil
}

// generateSQL asks the LLM for a statement and extracts it from the raw
// response. One retry on an empty extraction; provider failures come back
// as user-safe execution errors.
func (s *queryService) generateSQL(ctx context.Context, question string) (string, error) {
	schemaText, err := s.schemaSvc.SchemaText(ctx)
	if err != nil {
		s.logger.Error("Schema introspection failed", zap.Error(err))
		return "", &datasource.ExecutionError{Message: msgSchemaUnavailable, Cause: err}
	}

	mapped := s.aliases.Apply(question)
	prompt := llm.BuildPrompt(mapped, schemaText)

	for attempt := 1; attempt <= 2; attempt++ {
		llmCtx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
		raw, genErr := s.llmClient.GenerateResponse(llmCtx, prompt, llm.SystemMessage, s.cfg.Temperature)
		cancel()

		if genErr != nil {
			s.logger.Error("LLM generation failed",
				zap.String("error_type", string(llm.GetErrorType(genErr))),
				zap.Error(genErr),
			)
			return "", &datasource.ExecutionError{Message: msgGenerationFailed, Cause: genErr}
		}

		if sqlQuery := llm.ExtractSQL(raw); sqlQuery != "" {
			return sqlQuery, nil
		}

		s.logger.Warn("No SQL statement in model response", zap.Int("attempt", attempt))
	}

	return "", &datasource.ExecutionError{Message: msgGenerationFailed}
}
