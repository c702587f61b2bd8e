package plans

import (
	"math"

	"github.com/google/uuid"

	"github.com/fdg312/portion-planner/internal/portions"
)

// DefaultRatio is used for any ratio omitted from a compute request.
const DefaultRatio = 0.5

// ComputeRequest is the request body for POST /v1/plans.
type ComputeRequest struct {
	CaloriesKcal float64  `json:"calories_kcal"`
	WeightKg     float64  `json:"weight_kg"`
	CarbVsFat    *float64 `json:"carb_vs_fat,omitempty"`
	CarbSplit    *float64 `json:"carb_split,omitempty"`
	FatSplit     *float64 `json:"fat_split,omitempty"`
}

// Input converts the request into planner input, filling omitted ratios.
func (r ComputeRequest) Input() portions.Input {
	return portions.Input{
		CaloriesKcal: r.CaloriesKcal,
		WeightKg:     r.WeightKg,
		CarbVsFat:    ratioOrDefault(r.CarbVsFat),
		CarbSplit:    ratioOrDefault(r.CarbSplit),
		FatSplit:     ratioOrDefault(r.FatSplit),
	}
}

func ratioOrDefault(v *float64) float64 {
	if v == nil {
		return DefaultRatio
	}
	return *v
}

// InputDTO echoes the resolved input.
type InputDTO struct {
	CaloriesKcal float64 `json:"calories_kcal"`
	WeightKg     float64 `json:"weight_kg"`
	CarbVsFat    float64 `json:"carb_vs_fat"`
	CarbSplit    float64 `json:"carb_split"`
	FatSplit     float64 `json:"fat_split"`
}

// ProteinDTO explains how the protein portions were chosen.
type ProteinDTO struct {
	FloorPortions        float64 `json:"floor_portions"`
	ProportionalPortions float64 `json:"proportional_portions"`
	TableFloorPortions   float64 `json:"table_floor_portions"`
	Kcal                 float64 `json:"kcal"`
}

// GroupKcalDTO is one group's calorie allocation before rounding.
type GroupKcalDTO struct {
	Group portions.GroupID `json:"group"`
	Label string           `json:"label"`
	Kcal  float64          `json:"kcal"`
}

// GroupPortionsDTO is one group's rounded portion count.
type GroupPortionsDTO struct {
	Group    portions.GroupID `json:"group"`
	Label    string           `json:"label"`
	Portions int              `json:"portions"`
}

// GroupCheckDTO is one group's contribution to a checked plan.
type GroupCheckDTO struct {
	Group       portions.GroupID `json:"group"`
	Label       string           `json:"label"`
	Portions    float64          `json:"portions"`
	Kcal        float64          `json:"kcal"`
	KcalRounded int              `json:"kcal_rounded"`
}

// CheckDTO is the recomputed total, with the salad reported separately
// from the group sum.
type CheckDTO struct {
	PlanID         *uuid.UUID      `json:"plan_id,omitempty"`
	Groups         []GroupCheckDTO `json:"groups"`
	GroupsKcal     float64         `json:"groups_kcal"`
	SaladKcal      float64         `json:"salad_kcal"`
	TotalKcal      int             `json:"total_kcal"`
	TotalKcalExact float64         `json:"total_kcal_exact"`
}

// ComputeResponse is the response body for POST /v1/plans.
type ComputeResponse struct {
	PlanID        uuid.UUID          `json:"plan_id"`
	Input         InputDTO           `json:"input"`
	Protein       ProteinDTO         `json:"protein"`
	SaladKcal     float64            `json:"salad_kcal"`
	RemainingKcal float64            `json:"remaining_kcal"`
	CarbKcal      float64            `json:"carb_kcal"`
	FatKcal       float64            `json:"fat_kcal"`
	Allocation    []GroupKcalDTO     `json:"allocation"`
	Portions      []GroupPortionsDTO `json:"portions"`
	Check         CheckDTO           `json:"check"`
}

// CheckRequest is the request body for POST /v1/plans/check. Keys of
// Portions are group ids ("4", "5", ...); values may be fractional.
type CheckRequest struct {
	PlanID   *uuid.UUID                   `json:"plan_id,omitempty"`
	Portions map[portions.GroupID]float64 `json:"portions"`
}

// GroupInfoDTO describes one group's constants.
type GroupInfoDTO struct {
	Group           portions.GroupID `json:"group"`
	Label           string           `json:"label"`
	KcalPerPortion  float64          `json:"kcal_per_portion"`
	GramsPerPortion *float64         `json:"grams_per_portion,omitempty"`
}

// FloorTierDTO is a protein floor tier. BelowKg is null for the open tier.
type FloorTierDTO struct {
	BelowKg  *float64 `json:"below_kg"`
	Portions float64  `json:"portions"`
}

// RulesResponse is the response body for GET /v1/groups.
type RulesResponse struct {
	Groups             []GroupInfoDTO `json:"groups"`
	SaladKcal          float64        `json:"salad_kcal"`
	ProteinGramsPerKg  float64        `json:"protein_g_per_kg"`
	KcalPerGramProtein float64        `json:"kcal_per_g_protein"`
	ProteinFloor       []FloorTierDTO `json:"protein_floor"`
	PortionRounding    string         `json:"portion_rounding"`
	TotalRounding      string         `json:"total_rounding"`
	StrictInput        bool           `json:"strict_input"`
}

// NewCheckDTO converts a core check result.
func NewCheckDTO(planID *uuid.UUID, c portions.Check) CheckDTO {
	groups := make([]GroupCheckDTO, 0, len(c.Groups))
	for _, g := range c.Groups {
		groups = append(groups, GroupCheckDTO{
			Group:       g.Group,
			Label:       g.Group.Label(),
			Portions:    g.Portions,
			Kcal:        g.Kcal,
			KcalRounded: g.KcalRounded,
		})
	}
	return CheckDTO{
		PlanID:         planID,
		Groups:         groups,
		GroupsKcal:     c.GroupsKcal,
		SaladKcal:      c.SaladKcal,
		TotalKcal:      c.Total,
		TotalKcalExact: c.Exact,
	}
}

// NewComputeResponse converts a full pipeline result.
func NewComputeResponse(planID uuid.UUID, p *portions.Planner, res portions.Result) ComputeResponse {
	a := res.Allocation
	in := a.Input

	allocation := make([]GroupKcalDTO, 0, len(a.Groups))
	for _, e := range a.Entries() {
		allocation = append(allocation, GroupKcalDTO{Group: e.Group, Label: e.Group.Label(), Kcal: e.Kcal})
	}

	counts := make([]GroupPortionsDTO, 0, len(res.Plan))
	for _, e := range res.Plan.Entries() {
		counts = append(counts, GroupPortionsDTO{Group: e.Group, Label: e.Group.Label(), Portions: e.Portions})
	}

	id := planID
	return ComputeResponse{
		PlanID: planID,
		Input: InputDTO{
			CaloriesKcal: in.CaloriesKcal,
			WeightKg:     in.WeightKg,
			CarbVsFat:    in.CarbVsFat,
			CarbSplit:    in.CarbSplit,
			FatSplit:     in.FatSplit,
		},
		Protein: ProteinDTO{
			FloorPortions:        a.ProteinPortions,
			ProportionalPortions: p.ProportionalProtein(in.WeightKg),
			TableFloorPortions:   p.TableFloor(in.WeightKg),
			Kcal:                 a.ProteinKcal,
		},
		SaladKcal:     a.SaladKcal,
		RemainingKcal: a.RemainingKcal,
		CarbKcal:      a.CarbKcal,
		FatKcal:       a.FatKcal,
		Allocation:    allocation,
		Portions:      counts,
		Check:         NewCheckDTO(&id, res.Check),
	}
}

// NewRulesResponse describes the planner's active rules.
func NewRulesResponse(r portions.Rules) RulesResponse {
	groups := make([]GroupInfoDTO, 0, len(r.CaloriesPerPortion))
	for _, g := range portions.Groups() {
		info := GroupInfoDTO{Group: g, Label: g.Label(), KcalPerPortion: r.CaloriesPerPortion[g]}
		if grams, ok := r.GramsPerPortion[g]; ok {
			info.GramsPerPortion = &grams
		}
		groups = append(groups, info)
	}

	tiers := make([]FloorTierDTO, 0, len(r.ProteinFloor))
	for _, t := range r.ProteinFloor {
		tier := FloorTierDTO{Portions: t.Portions}
		if !math.IsInf(t.Below, 1) {
			below := t.Below
			tier.BelowKg = &below
		}
		tiers = append(tiers, tier)
	}

	return RulesResponse{
		Groups:             groups,
		SaladKcal:          r.SaladKcal,
		ProteinGramsPerKg:  r.ProteinGramsPerKg,
		KcalPerGramProtein: r.KcalPerGramProtein,
		ProteinFloor:       tiers,
		PortionRounding:    string(r.PortionRounding),
		TotalRounding:      string(r.TotalRounding),
		StrictInput:        r.StrictInput,
	}
}
