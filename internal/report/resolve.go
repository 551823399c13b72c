package report

import (
	"errors"
	"fmt"

	"pipetrak/internal/storage"
)

var (
	ErrInvalidTemplate = errors.New("invalid milestone template")
	ErrNoData          = errors.New("no components or welds found")
	ErrNoActivity      = errors.New("no activity in this period")
)

// CategoryProgress is one milestone category of one entity after weight
// resolution: the manhour budget allotted to the category and the manhours
// earned against it. Value is the normalized completion (0-100, discrete
// milestones mapped to 0 or 100).
type CategoryProgress struct {
	Name     string  `json:"name"`
	Weight   int     `json:"weight"`
	Value    float64 `json:"value"`
	MhBudget float64 `json:"mh_budget"`
	MhEarned float64 `json:"mh_earned"`
}

// Entity is a component or field weld ready for aggregation: grouping keys,
// budget, and per-category earned values resolved against its template.
type Entity struct {
	ID          string             `json:"id"`
	Area        *string            `json:"area"`
	System      *string            `json:"system"`
	TestPackage *string            `json:"test_package"`
	Welder      *string            `json:"welder"`
	MhBudget    float64            `json:"mh_budget"`
	WeightPct   float64            `json:"weight_pct"`
	Categories  []CategoryProgress `json:"categories"`
}

// HasActivity reports whether any milestone on the entity is past zero.
func (e Entity) HasActivity() bool {
	for _, c := range e.Categories {
		if c.Value > 0 {
			return true
		}
	}
	return false
}

// ValidateTemplate checks the invariants the migration layer is supposed to
// guarantee: weights summing to exactly 100 and unique positive milestone
// order. Aggregation fails loudly on a bad template instead of renormalizing,
// so upstream data bugs surface instead of skewing every report.
func ValidateTemplate(tmpl storage.MilestoneTemplate) error {
	if len(tmpl.Milestones) == 0 {
		return fmt.Errorf("%w: template %s v%d has no milestones", ErrInvalidTemplate, tmpl.ComponentType, tmpl.Version)
	}

	sum := 0
	seen := make(map[int]bool, len(tmpl.Milestones))
	for _, m := range tmpl.Milestones {
		if m.Weight < 0 {
			return fmt.Errorf("%w: milestone %q has negative weight %d", ErrInvalidTemplate, m.Name, m.Weight)
		}
		sum += m.Weight

		if m.Order < 1 {
			return fmt.Errorf("%w: milestone %q has order %d, want >= 1", ErrInvalidTemplate, m.Name, m.Order)
		}
		if seen[m.Order] {
			return fmt.Errorf("%w: duplicate milestone order %d in template %s v%d", ErrInvalidTemplate, m.Order, tmpl.ComponentType, tmpl.Version)
		}
		seen[m.Order] = true
	}

	if sum != 100 {
		return fmt.Errorf("%w: weights sum to %d, want 100 (template %s v%d)", ErrInvalidTemplate, sum, tmpl.ComponentType, tmpl.Version)
	}

	return nil
}

// ResolveProgress converts raw milestone values into per-category earned
// manhours plus the overall weight-based percent.
//
// Per milestone: categoryBudget = mhBudget * weight/100, categoryEarned =
// categoryBudget * value/100 after normalization. The overall percent is
// sum(value * weight / 100), which agrees with sum(earned)/sum(budget) for
// any scalar budget and stays defined when the budget is zero.
func ResolveProgress(tmpl storage.MilestoneTemplate, values map[string]float64, mhBudget float64) ([]CategoryProgress, float64, error) {
	if err := ValidateTemplate(tmpl); err != nil {
		return nil, 0, err
	}

	categories := make([]CategoryProgress, 0, len(tmpl.Milestones))
	weightPct := 0.0

	for _, m := range tmpl.Milestones {
		value := normalizeValue(values[m.Name], m.IsPartial)

		budget := mhBudget * float64(m.Weight) / 100
		earned := budget * value / 100
		weightPct += value * float64(m.Weight) / 100

		categories = append(categories, CategoryProgress{
			Name:     m.Name,
			Weight:   m.Weight,
			Value:    value,
			MhBudget: budget,
			MhEarned: earned,
		})
	}

	return categories, weightPct, nil
}

// normalizeValue maps raw milestone values onto the 0-100 scale. Partial
// milestones clamp; discrete milestones are complete or not.
func normalizeValue(raw float64, isPartial bool) float64 {
	if !isPartial {
		if raw >= 1 {
			return 100
		}
		return 0
	}
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return raw
}
