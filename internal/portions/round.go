package portions

import (
	"maps"
	"slices"
)

// Plan maps each group to a whole number of portions. Counts may be zero or
// negative when the allocation was.
type Plan map[GroupID]int

// PlanEntry is one row of a plan in display order.
type PlanEntry struct {
	Group    GroupID
	Portions int
}

// Entries lists the plan in ascending group order.
func (pl Plan) Entries() []PlanEntry {
	out := make([]PlanEntry, 0, len(pl))
	for _, g := range slices.Sorted(maps.Keys(pl)) {
		out = append(out, PlanEntry{Group: g, Portions: pl[g]})
	}
	return out
}

// Portions converts the plan into the real-valued form Check takes.
func (pl Plan) Portions() map[GroupID]float64 {
	out := make(map[GroupID]float64, len(pl))
	for g, n := range pl {
		out[g] = float64(n)
	}
	return out
}

// Round converts every group allocation into portions and rounds with
// Rules.PortionRounding. No clamping is applied.
func (p *Planner) Round(a Allocation) (Plan, error) {
	plan := make(Plan, len(a.Groups))
	for g, kcal := range a.Groups {
		per, err := p.rules.KcalPerPortion(g)
		if err != nil {
			return nil, err
		}
		plan[g] = p.rules.PortionRounding.Int(kcal / per)
	}
	return plan, nil
}
