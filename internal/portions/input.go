package portions

import (
	"fmt"
	"math"
)

// Input is one planning request.
type Input struct {
	CaloriesKcal float64
	WeightKg     float64
	// CarbVsFat is the share of the remaining calories given to carbs.
	CarbVsFat float64
	// CarbSplit is the share of carb calories given to GroupCarbB.
	CarbSplit float64
	// FatSplit is the share of fat calories given to GroupFatB.
	FatSplit float64
}

// Validate applies the hardened range checks used when Rules.StrictInput is set.
func (in Input) Validate() error {
	if !finite(in.CaloriesKcal) || in.CaloriesKcal <= 0 {
		return fmt.Errorf("%w: calories must be positive, got %v", ErrInvalidInput, in.CaloriesKcal)
	}
	if !finite(in.WeightKg) || in.WeightKg <= 0 {
		return fmt.Errorf("%w: weight must be positive, got %v", ErrInvalidInput, in.WeightKg)
	}
	ratios := []struct {
		name string
		v    float64
	}{
		{"carb_vs_fat", in.CarbVsFat},
		{"carb_split", in.CarbSplit},
		{"fat_split", in.FatSplit},
	}
	for _, r := range ratios {
		if !finite(r.v) || r.v < 0 || r.v > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidInput, r.name, r.v)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
