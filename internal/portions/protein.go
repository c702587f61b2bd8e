package portions

// ProportionalProtein converts body weight into protein portions:
// grams per kg, times kcal per gram, divided by the protein portion size.
func (p *Planner) ProportionalProtein(weightKg float64) float64 {
	kcal := weightKg * p.rules.ProteinGramsPerKg * p.rules.KcalPerGramProtein
	return kcal / p.rules.CaloriesPerPortion[GroupProtein]
}

// TableFloor returns the tier minimum for weightKg. The comparison is a
// strict "<", so a weight equal to a threshold falls into the next tier.
// It returns 0 when no tier matches.
func (p *Planner) TableFloor(weightKg float64) float64 {
	for _, t := range p.rules.ProteinFloor {
		if weightKg < t.Below {
			return t.Portions
		}
	}
	return 0
}

// ProteinFloor returns the minimum protein portions for weightKg, not yet
// rounded: the larger of the proportional estimate and the table floor.
func (p *Planner) ProteinFloor(weightKg float64) float64 {
	return max(p.ProportionalProtein(weightKg), p.TableFloor(weightKg))
}
