package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asksql/asksql-engine/pkg/apperrors"
	"github.com/asksql/asksql-engine/pkg/auth"
	"github.com/asksql/asksql-engine/pkg/models"
	"github.com/asksql/asksql-engine/pkg/services"
)

// HistoryListResponse wraps search and filter results that are not paginated.
type HistoryListResponse struct {
	Items []*models.QueryRecord `json:"items"`
	Total int                   `json:"total"`
}

// ClearHistoryResponse reports how many entries a clear removed.
type ClearHistoryResponse struct {
	Deleted int64 `json:"deleted"`
}

// HistoryHandler handles query history HTTP requests.
type HistoryHandler struct {
	historyService services.HistoryService
	logger         *zap.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(historyService services.HistoryService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
		logger:         logger,
	}
}

// RegisterRoutes registers the history handler's routes on the given mux.
func (h *HistoryHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/history", authMiddleware.RequireUser(h.List))
	mux.HandleFunc("GET /api/history/{id}", authMiddleware.RequireUser(h.Get))
	mux.HandleFunc("DELETE /api/history/{id}", authMiddleware.RequireUser(h.Delete))
	mux.HandleFunc("DELETE /api/history", authMiddleware.RequireUser(h.Clear))
}

// List handles GET /api/history. Supports page/per_page pagination, a
// search term over question and SQL text, and a status filter. Search and
// status return the full matching set rather than a page.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	if term := strings.TrimSpace(q.Get("search")); term != "" {
		records, err := h.historyService.Search(r.Context(), userID, term)
		if err != nil {
			h.logger.Error("Failed to search history", zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to search history")
			return
		}
		h.writeJSON(w, HistoryListResponse{Items: records, Total: len(records)})
		return
	}

	if status := q.Get("status"); status != "" {
		records, err := h.historyService.FilterByStatus(r.Context(), userID, status)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidStatus) {
				h.writeError(w, http.StatusBadRequest, "invalid_status", "Status must be 'success' or 'error'")
				return
			}
			h.logger.Error("Failed to filter history", zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to filter history")
			return
		}
		h.writeJSON(w, HistoryListResponse{Items: records, Total: len(records)})
		return
	}

	page := parseIntParam(q.Get("page"), 1)
	perPage := parseIntParam(q.Get("per_page"), 0)

	pageResult, err := h.historyService.List(r.Context(), userID, page, perPage)
	if err != nil {
		h.logger.Error("Failed to list history", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list history")
		return
	}

	h.writeJSON(w, pageResult)
}

// Get handles GET /api/history/{id}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	recordID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "Invalid history entry ID")
		return
	}

	record, err := h.historyService.Get(r.Context(), userID, recordID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "History entry not found")
			return
		}
		h.logger.Error("Failed to get history entry", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get history entry")
		return
	}

	h.writeJSON(w, record)
}

// Delete handles DELETE /api/history/{id}
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	recordID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "Invalid history entry ID")
		return
	}

	if err := h.historyService.Delete(r.Context(), userID, recordID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "History entry not found")
			return
		}
		h.logger.Error("Failed to delete history entry", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete history entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/history
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	deleted, err := h.historyService.Clear(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to clear history", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to clear history")
		return
	}

	h.writeJSON(w, ClearHistoryResponse{Deleted: deleted})
}

func (h *HistoryHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Not authenticated")
		return "", false
	}
	return userID, true
}

func (h *HistoryHandler) writeJSON(w http.ResponseWriter, data any) {
	if err := WriteJSON(w, http.StatusOK, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *HistoryHandler) writeError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	if err := ErrorResponse(w, statusCode, errorCode, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

// parseIntParam parses a positive integer query parameter, returning fallback
// for missing or malformed values.
func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
