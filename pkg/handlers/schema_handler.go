package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/asksql/asksql-engine/pkg/auth"
	"github.com/asksql/asksql-engine/pkg/services"
)

// RefreshSchemaResponse confirms a schema cache refresh.
type RefreshSchemaResponse struct {
	Status string `json:"status"`
}

// SchemaHandler serves the datasource schema used for SQL generation.
type SchemaHandler struct {
	schemaService services.SchemaService
	logger        *zap.Logger
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(schemaService services.SchemaService, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{
		schemaService: schemaService,
		logger:        logger,
	}
}

// RegisterRoutes registers the schema handler's routes on the given mux.
func (h *SchemaHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/schema", authMiddleware.RequireUser(h.Get))
	mux.HandleFunc("POST /api/schema/refresh", authMiddleware.RequireUser(h.Refresh))
}

// Get handles GET /api/schema. Always reads live table metadata from the
// datasource rather than the prompt cache.
func (h *SchemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	schema, err := h.schemaService.GetSchema(r.Context())
	if err != nil {
		h.logger.Error("Failed to discover schema", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to read datasource schema"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, schema); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Refresh handles POST /api/schema/refresh. Drops the cached schema text so
// the next question sees current table metadata.
func (h *SchemaHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.schemaService.Refresh()

	if err := WriteJSON(w, http.StatusOK, RefreshSchemaResponse{Status: "refreshed"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
