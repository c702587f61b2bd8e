package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fdg312/portion-planner/internal/plans"
)

const defaultTitle = "Daily portion plan"

// Export is a rendered document ready to be streamed.
type Export struct {
	PlanID      uuid.UUID
	Format      string
	Filename    string
	ContentType string
	Data        []byte
}

// Service builds plans and renders them. Nothing is stored.
type Service struct {
	plans     *plans.Service
	generator *Generator
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new reports service
func NewService(plansService *plans.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		plans:     plansService,
		generator: NewGenerator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Export computes the plan for req, applies caller edits if any, and renders it.
func (s *Service) Export(ctx context.Context, req ExportRequest, format string) (*Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatCSV {
		return nil, ErrInvalidFormat
	}

	planID, res, err := s.plans.Build(ctx, req.ComputeRequest)
	if err != nil {
		return nil, err
	}

	doc := PlanDocument{
		PlanID:      planID,
		Title:       strings.TrimSpace(req.Title),
		GeneratedAt: s.now(),
		Allocation:  res.Allocation,
		Plan:        res.Plan,
		Check:       res.Check,
	}
	if doc.Title == "" {
		doc.Title = defaultTitle
	}

	if req.Portions != nil {
		check, err := s.plans.CheckPortions(req.Portions)
		if err != nil {
			return nil, fmt.Errorf("edited plan: %w", err)
		}
		doc.Edited = req.Portions
		doc.Check = check
	}

	data, err := s.generator.Generate(doc, format)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	s.logger.Info("plan exported",
		zap.String("plan_id", planID.String()),
		zap.String("format", format),
		zap.Int("size_bytes", len(data)),
		zap.Bool("edited", doc.Edited != nil),
	)

	return &Export{
		PlanID:      planID,
		Format:      format,
		Filename:    fmt.Sprintf("portion-plan-%s.%s", planID.String()[:8], format),
		ContentType: ContentType(format),
		Data:        data,
	}, nil
}
