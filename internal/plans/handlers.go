package plans

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/portion-planner/internal/portions"
)

// DefaultMaxBodyKB bounds request bodies when no limit is configured.
const DefaultMaxBodyKB = 64

// Handler handles HTTP requests for portion plans.
type Handler struct {
	service     *Service
	maxBodySize int64
}

// NewHandler creates a new plans handler. maxBodyKB bounds the request body.
func NewHandler(service *Service, maxBodyKB int) *Handler {
	if maxBodyKB <= 0 {
		maxBodyKB = DefaultMaxBodyKB
	}
	return &Handler{service: service, maxBodySize: int64(maxBodyKB) << 10}
}

// HandleGroups handles GET /v1/groups
func (h *Handler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Rules())
}

// HandleCompute handles POST /v1/plans
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	resp, err := h.service.Compute(r.Context(), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleCheck handles POST /v1/plans/check
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	resp, err := h.service.Check(r.Context(), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// WriteServiceError maps planner errors to the standard error format.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingPortions):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, portions.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, portions.ErrUnknownGroup):
		writeError(w, http.StatusBadRequest, "unknown_group", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to process plan")
	}
}

// writeJSON encodes v before writing the header so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		body = []byte(`{"error":{"code":"internal_error","message":"Failed to encode response"}}`)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
