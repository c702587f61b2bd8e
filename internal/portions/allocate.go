package portions

// GroupKcal is the calorie amount of one group.
type GroupKcal struct {
	Group GroupID
	Kcal  float64
}

// Allocation is the calorie split of one Input before rounding.
type Allocation struct {
	Input Input

	ProteinPortions float64
	ProteinKcal     float64
	SaladKcal       float64
	// RemainingKcal = calories - protein - salad. Negative when the target
	// is too low for the protein floor; it is not clamped.
	RemainingKcal float64
	CarbKcal      float64
	FatKcal       float64

	// Groups holds every group including GroupProtein (= ProteinKcal).
	Groups map[GroupID]float64
}

// Entries lists the group calories in ascending group order.
func (a Allocation) Entries() []GroupKcal {
	out := make([]GroupKcal, 0, len(groupOrder))
	for _, g := range groupOrder {
		if kcal, ok := a.Groups[g]; ok {
			out = append(out, GroupKcal{Group: g, Kcal: kcal})
		}
	}
	return out
}

// Finite reports whether every figure of the allocation is a finite number.
// Unchecked arithmetic on extreme inputs can overflow to ±Inf.
func (a Allocation) Finite() bool {
	for _, v := range []float64{a.ProteinPortions, a.ProteinKcal, a.RemainingKcal, a.CarbKcal, a.FatKcal} {
		if !finite(v) {
			return false
		}
	}
	for _, kcal := range a.Groups {
		if !finite(kcal) {
			return false
		}
	}
	return true
}

// Allocate splits in.CaloriesKcal across the five groups. The protein floor
// is settled first; the rest, minus the salad, is divided by the ratios.
func (p *Planner) Allocate(in Input) (Allocation, error) {
	if p.rules.StrictInput {
		if err := in.Validate(); err != nil {
			return Allocation{}, err
		}
	}

	proteinPortions := p.ProteinFloor(in.WeightKg)
	proteinKcal := proteinPortions * p.rules.CaloriesPerPortion[GroupProtein]
	remaining := in.CaloriesKcal - proteinKcal - p.rules.SaladKcal

	fat := remaining * (1 - in.CarbVsFat)
	carb := remaining * in.CarbVsFat

	return Allocation{
		Input:           in,
		ProteinPortions: proteinPortions,
		ProteinKcal:     proteinKcal,
		SaladKcal:       p.rules.SaladKcal,
		RemainingKcal:   remaining,
		CarbKcal:        carb,
		FatKcal:         fat,
		Groups: map[GroupID]float64{
			GroupProtein: proteinKcal,
			GroupCarbA:   carb * (1 - in.CarbSplit),
			GroupCarbB:   carb * in.CarbSplit,
			GroupFatA:    fat * (1 - in.FatSplit),
			GroupFatB:    fat * in.FatSplit,
		},
	}, nil
}
