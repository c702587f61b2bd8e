package portions

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// Preset names accepted by PresetRules.
const (
	PresetCanonical = "canonical"
	PresetLegacy    = "legacy"
)

// FloorTier is one row of the protein floor table: weights strictly below
// Below (kg) require at least Portions protein portions.
type FloorTier struct {
	Below    float64
	Portions float64
}

// Rules is the injectable configuration of the planner.
type Rules struct {
	// SaladKcal is the fixed overhead added once outside the group split.
	SaladKcal float64

	CaloriesPerPortion map[GroupID]float64
	// GramsPerPortion is informational and never used in computations.
	GramsPerPortion map[GroupID]float64

	// ProteinFloor is ordered by ascending Below; first match wins.
	ProteinFloor       []FloorTier
	ProteinGramsPerKg  float64
	KcalPerGramProtein float64

	PortionRounding RoundingMode
	TotalRounding   RoundingMode

	// StrictInput rejects out-of-range inputs with ErrInvalidInput.
	StrictInput bool
}

// DefaultRules returns the canonical constants.
func DefaultRules() Rules {
	return Rules{
		SaladKcal: 130,
		CaloriesPerPortion: map[GroupID]float64{
			GroupProtein: 105,
			GroupCarbA:   32,
			GroupFatA:    115,
			GroupCarbB:   75,
			GroupFatB:    97,
		},
		ProteinFloor: []FloorTier{
			{Below: 65, Portions: 6},
			{Below: 75, Portions: 7},
			{Below: 85, Portions: 9},
			{Below: math.Inf(1), Portions: 10},
		},
		ProteinGramsPerKg:  2.2,
		KcalPerGramProtein: 4,
		PortionRounding:    RoundHalfEven,
		TotalRounding:      RoundHalfAway,
	}
}

// LegacyRules matches the first single-page calculator: a 100 kcal salad
// and a truncated checker total.
func LegacyRules() Rules {
	r := DefaultRules()
	r.SaladKcal = 100
	r.TotalRounding = RoundTruncate
	return r
}

// PresetRules resolves a preset name. An empty name is the canonical preset.
func PresetRules(name string) (Rules, error) {
	switch name {
	case "", PresetCanonical:
		return DefaultRules(), nil
	case PresetLegacy:
		return LegacyRules(), nil
	default:
		return Rules{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidRules, name)
	}
}

// Clone returns a deep copy so callers cannot mutate a planner's table.
func (r Rules) Clone() Rules {
	c := r
	c.CaloriesPerPortion = maps.Clone(r.CaloriesPerPortion)
	c.GramsPerPortion = maps.Clone(r.GramsPerPortion)
	c.ProteinFloor = slices.Clone(r.ProteinFloor)
	return c
}

// Validate checks the table for consistency.
func (r Rules) Validate() error {
	if r.SaladKcal < 0 || math.IsNaN(r.SaladKcal) || math.IsInf(r.SaladKcal, 0) {
		return fmt.Errorf("%w: salad kcal must be a non-negative number, got %v", ErrInvalidRules, r.SaladKcal)
	}
	for _, g := range groupOrder {
		kcal, ok := r.CaloriesPerPortion[g]
		if !ok {
			return fmt.Errorf("%w: missing kcal per portion for %s", ErrInvalidRules, g)
		}
		if !(kcal > 0) || math.IsInf(kcal, 0) {
			return fmt.Errorf("%w: kcal per portion for %s must be positive, got %v", ErrInvalidRules, g, kcal)
		}
	}
	for g := range r.CaloriesPerPortion {
		if !g.Valid() {
			return fmt.Errorf("%w: %w: %d", ErrInvalidRules, ErrUnknownGroup, int(g))
		}
	}
	for g, grams := range r.GramsPerPortion {
		if !g.Valid() {
			return fmt.Errorf("%w: %w: %d", ErrInvalidRules, ErrUnknownGroup, int(g))
		}
		if grams < 0 {
			return fmt.Errorf("%w: grams per portion for %s must not be negative", ErrInvalidRules, g)
		}
	}
	for i, t := range r.ProteinFloor {
		if math.IsNaN(t.Below) || math.IsNaN(t.Portions) || t.Portions < 0 {
			return fmt.Errorf("%w: protein floor tier %d is malformed", ErrInvalidRules, i)
		}
		if i > 0 && t.Below <= r.ProteinFloor[i-1].Below {
			return fmt.Errorf("%w: protein floor thresholds must be strictly ascending", ErrInvalidRules)
		}
	}
	if !(r.ProteinGramsPerKg > 0) || !(r.KcalPerGramProtein > 0) {
		return fmt.Errorf("%w: protein factors must be positive", ErrInvalidRules)
	}
	for _, m := range []RoundingMode{r.PortionRounding, r.TotalRounding} {
		if m == "" {
			continue
		}
		if _, err := ParseRoundingMode(string(m)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRules, err)
		}
	}
	return nil
}

// KcalPerPortion looks up a group's calories per portion.
func (r Rules) KcalPerPortion(g GroupID) (float64, error) {
	kcal, ok := r.CaloriesPerPortion[g]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownGroup, int(g))
	}
	return kcal, nil
}

// MaxRoundingError is the worst-case distance between a checked plan and
// its calorie target caused by rounding each group to a whole portion.
func (r Rules) MaxRoundingError() float64 {
	step := 0.5
	if r.PortionRounding == RoundTruncate {
		step = 1
	}
	var sum float64
	for _, g := range groupOrder {
		sum += step * r.CaloriesPerPortion[g]
	}
	return sum
}
