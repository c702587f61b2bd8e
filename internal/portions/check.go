package portions

import (
	"fmt"
	"slices"
)

// GroupCheck is one group's contribution to a checked plan.
type GroupCheck struct {
	Group    GroupID
	Portions float64
	Kcal     float64
	// KcalRounded is Kcal rounded with Rules.TotalRounding, the per-group
	// figure shown next to the portions.
	KcalRounded int
}

// Check is the recomputed calorie total of a (possibly edited) plan.
type Check struct {
	Groups     []GroupCheck
	GroupsKcal float64
	SaladKcal  float64
	// Exact is GroupsKcal + SaladKcal in real arithmetic.
	Exact float64
	// Total is Exact rounded with Rules.TotalRounding.
	Total int
}

// Check recomputes the calories of a plan. Portions may be fractional.
// Groups absent from portions contribute zero and are still listed.
// Non-finite portions are rejected only under Rules.StrictInput.
func (p *Planner) Check(portions map[GroupID]float64) (Check, error) {
	for g, n := range portions {
		if !g.Valid() {
			return Check{}, fmt.Errorf("%w: %d", ErrUnknownGroup, int(g))
		}
		if p.rules.StrictInput && !finite(n) {
			return Check{}, fmt.Errorf("%w: portions for %s must be a finite number", ErrInvalidInput, g)
		}
	}

	res := Check{
		Groups:    make([]GroupCheck, 0, len(groupOrder)),
		SaladKcal: p.rules.SaladKcal,
	}
	for _, g := range groupOrder {
		per, err := p.rules.KcalPerPortion(g)
		if err != nil {
			return Check{}, err
		}
		n := portions[g]
		kcal := n * per
		res.Groups = append(res.Groups, GroupCheck{
			Group:       g,
			Portions:    n,
			Kcal:        kcal,
			KcalRounded: p.rules.TotalRounding.Int(kcal),
		})
		res.GroupsKcal += kcal
	}
	res.Exact = res.GroupsKcal + res.SaladKcal
	res.Total = p.rules.TotalRounding.Int(res.Exact)
	return res, nil
}

// Finite reports whether every figure of the check is a finite number.
func (c Check) Finite() bool {
	for _, g := range c.Groups {
		if !finite(g.Portions) || !finite(g.Kcal) {
			return false
		}
	}
	return finite(c.GroupsKcal) && finite(c.Exact)
}

// Group returns the entry for g, if present.
func (c Check) Group(g GroupID) (GroupCheck, bool) {
	i := slices.IndexFunc(c.Groups, func(gc GroupCheck) bool { return gc.Group == g })
	if i < 0 {
		return GroupCheck{}, false
	}
	return c.Groups[i], true
}
