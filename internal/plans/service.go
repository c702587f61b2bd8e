package plans

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fdg312/portion-planner/internal/portions"
	"github.com/fdg312/portion-planner/internal/reqctx"
)

// ErrMissingPortions is returned when a check request carries no plan.
var ErrMissingPortions = errors.New("portions is required")

// Service exposes the planner to HTTP callers. It keeps no state between
// calls: the plan returned by Compute is threaded back by the caller.
type Service struct {
	planner *portions.Planner
	logger  *zap.Logger
}

// NewService creates a new plans service.
func NewService(planner *portions.Planner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{planner: planner, logger: logger}
}

// Planner returns the underlying planner.
func (s *Service) Planner() *portions.Planner {
	return s.planner
}

// Build runs the full pipeline and assigns a fresh plan id.
func (s *Service) Build(ctx context.Context, req ComputeRequest) (uuid.UUID, portions.Result, error) {
	res, err := s.planner.Build(req.Input())
	if err != nil {
		return uuid.Nil, portions.Result{}, fmt.Errorf("build plan: %w", err)
	}
	if !res.Allocation.Finite() || !res.Check.Finite() {
		return uuid.Nil, portions.Result{}, fmt.Errorf("build plan: %w: calories or weight overflow the calculation", portions.ErrInvalidInput)
	}

	planID := uuid.New()
	log := s.log(ctx).With(zap.String("plan_id", planID.String()))
	if res.Allocation.RemainingKcal < 0 {
		log.Warn("calorie target is below protein and salad; plan has negative portions",
			zap.Float64("calories_kcal", req.CaloriesKcal),
			zap.Float64("weight_kg", req.WeightKg),
			zap.Float64("remaining_kcal", res.Allocation.RemainingKcal),
		)
	}
	log.Debug("plan computed",
		zap.Float64("calories_kcal", req.CaloriesKcal),
		zap.Int("checked_total_kcal", res.Check.Total),
	)
	return planID, res, nil
}

// Compute builds a plan and converts it for the API.
func (s *Service) Compute(ctx context.Context, req ComputeRequest) (ComputeResponse, error) {
	planID, res, err := s.Build(ctx, req)
	if err != nil {
		return ComputeResponse{}, err
	}
	return NewComputeResponse(planID, s.planner, res), nil
}

// Check recomputes the calories of a caller-supplied plan.
func (s *Service) Check(ctx context.Context, req CheckRequest) (CheckDTO, error) {
	if req.Portions == nil {
		return CheckDTO{}, ErrMissingPortions
	}

	c, err := s.CheckPortions(req.Portions)
	if err != nil {
		return CheckDTO{}, err
	}

	s.log(ctx).Debug("plan checked", zap.Int("groups", len(req.Portions)), zap.Int("total_kcal", c.Total))
	return NewCheckDTO(req.PlanID, c), nil
}

// CheckPortions runs the calorie checker and rejects results that
// overflowed to ±Inf, which cannot be encoded as JSON.
func (s *Service) CheckPortions(p map[portions.GroupID]float64) (portions.Check, error) {
	c, err := s.planner.Check(p)
	if err != nil {
		return portions.Check{}, fmt.Errorf("check plan: %w", err)
	}
	if !c.Finite() {
		return portions.Check{}, fmt.Errorf("check plan: %w: portions overflow the calculation", portions.ErrInvalidInput)
	}
	return c, nil
}

// Rules describes the active planner rules.
func (s *Service) Rules() RulesResponse {
	return NewRulesResponse(s.planner.Rules())
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	if id, ok := reqctx.GetRequestID(ctx); ok {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}
