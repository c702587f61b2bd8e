// Package portions turns a daily calorie target and body weight into
// whole-portion counts for five nutrition groups, and recomputes the
// calories of a plan after a person edits it.
//
// The pipeline is ProteinFloor -> Allocate -> Round, with Check usable on
// any plan. A Planner holds an immutable copy of its Rules and is safe for
// concurrent use.
package portions

import "fmt"

// Planner evaluates the pipeline for one set of Rules.
type Planner struct {
	rules Rules
}

// NewPlanner validates r and keeps a private copy of it.
func NewPlanner(r Rules) (*Planner, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	c := r.Clone()
	if c.PortionRounding == "" {
		c.PortionRounding = RoundHalfEven
	}
	if c.TotalRounding == "" {
		c.TotalRounding = RoundHalfAway
	}
	return &Planner{rules: c}, nil
}

// MustPlanner is NewPlanner for rules known to be valid.
func MustPlanner(r Rules) *Planner {
	p, err := NewPlanner(r)
	if err != nil {
		panic(err)
	}
	return p
}

// Rules returns a copy of the planner's rules.
func (p *Planner) Rules() Rules {
	return p.rules.Clone()
}

// Result bundles one full pipeline run.
type Result struct {
	Allocation Allocation
	Plan       Plan
	Check      Check
}

// Build runs Allocate, Round and Check for in.
func (p *Planner) Build(in Input) (Result, error) {
	alloc, err := p.Allocate(in)
	if err != nil {
		return Result{}, err
	}
	plan, err := p.Round(alloc)
	if err != nil {
		return Result{}, fmt.Errorf("round allocation: %w", err)
	}
	check, err := p.Check(plan.Portions())
	if err != nil {
		return Result{}, fmt.Errorf("check plan: %w", err)
	}
	return Result{Allocation: alloc, Plan: plan, Check: check}, nil
}
