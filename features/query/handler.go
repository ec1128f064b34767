package query

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"caselens/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

type askRequest struct {
	Reference string `json:"reference"`
	Question  string `json:"question"`
}

type askResponse struct {
	Reference string `json:"reference"`
	Answer    string `json:"answer"`
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "INVALID_JSON", "request body must be valid JSON", http.StatusBadRequest)
		return
	}

	req.Reference = strings.TrimSpace(req.Reference)
	req.Question = strings.TrimSpace(req.Question)
	if req.Reference == "" || req.Question == "" {
		h.writeError(ctx, w, "MISSING_FIELD", "reference and question are required", http.StatusBadRequest)
		return
	}

	answer, err := h.service.Answer(ctx, req.Reference, req.Question)
	if err != nil {
		if errors.Is(err, ErrNoDocuments) {
			h.writeError(ctx, w, "NO_DOCUMENTS", "no indexed documents for this reference", http.StatusNotFound)
			return
		}
		slog.ErrorContext(ctx, "failed to answer question", "error", err, "reference", req.Reference, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to answer question", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(askResponse{Reference: req.Reference, Answer: answer}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
