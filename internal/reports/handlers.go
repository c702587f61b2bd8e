package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fdg312/portion-planner/internal/plans"
)

// Handlers handles HTTP requests for plan exports
type Handlers struct {
	service     *Service
	maxBodySize int64
}

// NewHandlers creates new handlers. maxBodyKB bounds the request body.
func NewHandlers(service *Service, maxBodyKB int) *Handlers {
	if maxBodyKB <= 0 {
		maxBodyKB = plans.DefaultMaxBodyKB
	}
	return &Handlers{service: service, maxBodySize: int64(maxBodyKB) << 10}
}

// HandleExport handles POST /v1/plans/export?format=pdf|csv
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	export, err := h.service.Export(r.Context(), req, r.URL.Query().Get("format"))
	if err != nil {
		if errors.Is(err, ErrInvalidFormat) {
			writeError(w, http.StatusBadRequest, "invalid_format", "Format must be 'pdf' or 'csv'")
			return
		}
		plans.WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.Header().Set("X-Plan-ID", export.PlanID.String())
	w.WriteHeader(http.StatusOK)
	w.Write(export.Data)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
