package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/asksql/asksql-engine/pkg/datasource"
	"github.com/asksql/asksql-engine/pkg/models"
)

// SchemaSource discovers the target datasource's schema.
type SchemaSource interface {
	DiscoverSchema(ctx context.Context) (*models.SchemaResponse, error)
}

// SchemaService serves the datasource schema, caching the prompt text so
// every question does not re-introspect the database.
type SchemaService interface {
	// GetSchema returns the structured schema, always fresh.
	GetSchema(ctx context.Context) (*models.SchemaResponse, error)

	// SchemaText returns the compact schema text used in prompts,
	// introspecting on first use and serving from cache afterwards.
	SchemaText(ctx context.Context) (string, error)

	// Refresh invalidates the cached schema text.
	Refresh()
}

type schemaService struct {
	source SchemaSource
	logger *zap.Logger

	mu         sync.RWMutex
	cachedText string
	cached     bool
}

// NewSchemaService creates a schema service over the given source.
func NewSchemaService(source SchemaSource, logger *zap.Logger) SchemaService {
	return &schemaService{
		source: source,
		logger: logger,
	}
}

func (s *schemaService) GetSchema(ctx context.Context) (*models.SchemaResponse, error) {
	schema, err := s.source.DiscoverSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover schema: %w", err)
	}
	return schema, nil
}

func (s *schemaService) SchemaText(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.cached {
		text := s.cachedText
		s.mu.RUnlock()
		return text, nil
	}
	s.mu.RUnlock()

	s.logger.Info("Fetching datasource schema")

	schema, err := s.source.DiscoverSchema(ctx)
	if err != nil {
		return "", fmt.Errorf("discover schema: %w", err)
	}

	text := datasource.SchemaText(schema)

	s.mu.Lock()
	s.cachedText = text
	s.cached = true
	s.mu.Unlock()

	return text, nil
}

func (s *schemaService) Refresh() {
	s.mu.Lock()
	s.cachedText = ""
	s.cached = false
	s.mu.Unlock()

	s.logger.Info("Schema cache invalidated")
}
