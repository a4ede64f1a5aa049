package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/asksql/asksql-engine/pkg/apperrors"
	"github.com/asksql/asksql-engine/pkg/auth"
	"github.com/asksql/asksql-engine/pkg/services"
)

// AskRequest is the POST /api/query body.
type AskRequest struct {
	Question string `json:"question"`
}

// QueryHandler handles natural language query requests.
type QueryHandler struct {
	queryService services.QueryService
	logger       *zap.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(queryService services.QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
		logger:       logger,
	}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/query", authMiddleware.RequireUser(h.Ask))
}

// Ask handles POST /api/query. A question that fails during generation or
// execution still returns 200 with status "error" in the body; only requests
// that never enter the pipeline (bad body, empty or hostile question) get a
// 4xx.
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Not authenticated"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	record, err := h.queryService.Handle(r.Context(), userID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEmptyQuestion):
			err = ErrorResponse(w, http.StatusBadRequest, "empty_question", "Question must not be empty")
		case errors.Is(err, apperrors.ErrUnsafeQuestion):
			err = ErrorResponse(w, http.StatusBadRequest, "unsafe_question", "Question was rejected")
		default:
			h.logger.Error("Query pipeline failed", zap.Error(err))
			err = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to process question")
		}
		if err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
