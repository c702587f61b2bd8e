package portions

import (
	"fmt"
	"slices"
)

// GroupID identifies a nutrition group. The set is fixed at compile time.
type GroupID int

const (
	GroupProtein GroupID = 4
	GroupCarbA   GroupID = 5
	GroupFatA    GroupID = 11
	GroupCarbB   GroupID = 12
	GroupFatB    GroupID = 13
)

var groupOrder = []GroupID{GroupProtein, GroupCarbA, GroupFatA, GroupCarbB, GroupFatB}

var groupLabels = map[GroupID]string{
	GroupProtein: "protein",
	GroupCarbA:   "carbs A",
	GroupFatA:    "fats A",
	GroupCarbB:   "carbs B",
	GroupFatB:    "fats B",
}

// Groups returns every group in ascending id order.
func Groups() []GroupID {
	return slices.Clone(groupOrder)
}

// Valid reports whether g belongs to the fixed group set.
func (g GroupID) Valid() bool {
	_, ok := groupLabels[g]
	return ok
}

// Label returns a human readable name, or "unknown".
func (g GroupID) Label() string {
	if l, ok := groupLabels[g]; ok {
		return l
	}
	return "unknown"
}

func (g GroupID) String() string {
	return fmt.Sprintf("group %d", int(g))
}
