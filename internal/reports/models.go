package reports

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fdg312/portion-planner/internal/plans"
	"github.com/fdg312/portion-planner/internal/portions"
)

// Constants for validation
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

var ErrInvalidFormat = errors.New("invalid format")

// ExportRequest is the request body for POST /v1/plans/export. Portions,
// when present, replaces the computed plan in the checked totals section.
type ExportRequest struct {
	plans.ComputeRequest
	Title    string                       `json:"title,omitempty"`
	Portions map[portions.GroupID]float64 `json:"portions,omitempty"`
}

// PlanDocument is everything rendered into one export.
type PlanDocument struct {
	PlanID      uuid.UUID
	Title       string
	GeneratedAt time.Time
	Allocation  portions.Allocation
	Plan        portions.Plan
	// Edited is nil unless the caller overrode the computed plan.
	Edited map[portions.GroupID]float64
	Check  portions.Check
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if format == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}
