package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/fdg312/portion-planner/internal/portions"
)

// RulesFile is the YAML layout of PLAN_RULES_FILE. Every field is optional;
// missing fields keep the preset value.
type RulesFile struct {
	SaladKcal          *float64        `yaml:"salad_kcal"`
	ProteinGramsPerKg  *float64        `yaml:"protein_g_per_kg"`
	KcalPerGramProtein *float64        `yaml:"kcal_per_g_protein"`
	PortionRounding    string          `yaml:"portion_rounding"`
	TotalRounding      string          `yaml:"total_rounding"`
	StrictInput        *bool           `yaml:"strict_input"`
	Groups             []RulesGroup    `yaml:"groups"`
	ProteinFloor       []RulesFloorRow `yaml:"protein_floor"`
}

// RulesGroup overrides one group's portion constants.
type RulesGroup struct {
	ID              int      `yaml:"id"`
	KcalPerPortion  *float64 `yaml:"kcal_per_portion"`
	GramsPerPortion *float64 `yaml:"grams_per_portion"`
}

// RulesFloorRow is one protein floor tier. An omitted "below" means +Inf.
type RulesFloorRow struct {
	Below    *float64 `yaml:"below"`
	Portions float64  `yaml:"portions"`
}

// ParseRules applies a YAML document on top of base.
func ParseRules(data []byte, base portions.Rules) (portions.Rules, error) {
	var f RulesFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return portions.Rules{}, fmt.Errorf("parse rules: %w", err)
	}

	r := base.Clone()
	if f.SaladKcal != nil {
		r.SaladKcal = *f.SaladKcal
	}
	if f.ProteinGramsPerKg != nil {
		r.ProteinGramsPerKg = *f.ProteinGramsPerKg
	}
	if f.KcalPerGramProtein != nil {
		r.KcalPerGramProtein = *f.KcalPerGramProtein
	}
	if f.StrictInput != nil {
		r.StrictInput = *f.StrictInput
	}
	if f.PortionRounding != "" {
		m, err := portions.ParseRoundingMode(f.PortionRounding)
		if err != nil {
			return portions.Rules{}, fmt.Errorf("portion_rounding: %w", err)
		}
		r.PortionRounding = m
	}
	if f.TotalRounding != "" {
		m, err := portions.ParseRoundingMode(f.TotalRounding)
		if err != nil {
			return portions.Rules{}, fmt.Errorf("total_rounding: %w", err)
		}
		r.TotalRounding = m
	}

	for _, g := range f.Groups {
		id := portions.GroupID(g.ID)
		if !id.Valid() {
			return portions.Rules{}, fmt.Errorf("groups: %w: %d", portions.ErrUnknownGroup, g.ID)
		}
		if g.KcalPerPortion != nil {
			if r.CaloriesPerPortion == nil {
				r.CaloriesPerPortion = make(map[portions.GroupID]float64)
			}
			r.CaloriesPerPortion[id] = *g.KcalPerPortion
		}
		if g.GramsPerPortion != nil {
			if r.GramsPerPortion == nil {
				r.GramsPerPortion = make(map[portions.GroupID]float64)
			}
			r.GramsPerPortion[id] = *g.GramsPerPortion
		}
	}

	if len(f.ProteinFloor) > 0 {
		tiers := make([]portions.FloorTier, 0, len(f.ProteinFloor))
		for _, row := range f.ProteinFloor {
			below := math.Inf(1)
			if row.Below != nil {
				below = *row.Below
			}
			tiers = append(tiers, portions.FloorTier{Below: below, Portions: row.Portions})
		}
		r.ProteinFloor = tiers
	}

	return r, nil
}

// LoadRulesFile reads path and applies it on top of base.
func LoadRulesFile(path string, base portions.Rules) (portions.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return portions.Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data, base)
}

// BuildRules resolves the planner rules: preset, then rules file, then the
// individual PLAN_* overrides. The result is validated.
func BuildRules(pc PlannerConfig) (portions.Rules, error) {
	r, err := portions.PresetRules(pc.Preset)
	if err != nil {
		return portions.Rules{}, err
	}

	if pc.RulesFile != "" {
		r, err = LoadRulesFile(pc.RulesFile, r)
		if err != nil {
			return portions.Rules{}, err
		}
	}

	if pc.SaladKcalSet {
		r.SaladKcal = pc.SaladKcal
	}
	if pc.StrictInputSet {
		r.StrictInput = pc.StrictInput
	}
	if pc.PortionRounding != "" {
		if r.PortionRounding, err = portions.ParseRoundingMode(pc.PortionRounding); err != nil {
			return portions.Rules{}, err
		}
	}
	if pc.TotalRounding != "" {
		if r.TotalRounding, err = portions.ParseRoundingMode(pc.TotalRounding); err != nil {
			return portions.Rules{}, err
		}
	}

	if err := r.Validate(); err != nil {
		return portions.Rules{}, err
	}
	return r, nil
}
