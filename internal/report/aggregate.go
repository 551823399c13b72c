package report

import (
	"fmt"

	"pipetrak/internal/storage"
)

// Dimension selects the grouping key for a report. The key extraction lives
// here so callers pick a dimension value instead of naming struct fields.
type Dimension string

const (
	DimensionArea        Dimension = "area"
	DimensionSystem      Dimension = "system"
	DimensionTestPackage Dimension = "test_package"
	DimensionWelder      Dimension = "welder"
)

func (d Dimension) Valid() bool {
	switch d {
	case DimensionArea, DimensionSystem, DimensionTestPackage, DimensionWelder:
		return true
	}
	return false
}

// key returns the grouping value for e, or ok=false when the entity has no
// value for this dimension and must be excluded from all rows.
func (d Dimension) key(e Entity) (string, bool) {
	var v *string
	switch d {
	case DimensionArea:
		v = e.Area
	case DimensionSystem:
		v = e.System
	case DimensionTestPackage:
		v = e.TestPackage
	case DimensionWelder:
		v = e.Welder
	}
	if v == nil || *v == "" {
		return "", false
	}
	return *v, true
}

func (d Dimension) weldKey(w storage.FieldWeldRow) (string, bool) {
	var v *string
	switch d {
	case DimensionArea:
		v = w.Area
	case DimensionSystem:
		v = w.System
	case DimensionTestPackage:
		v = w.TestPackage
	case DimensionWelder:
		v = w.WelderName
	}
	if v == nil || *v == "" {
		return "", false
	}
	return *v, true
}

// GrandTotalName is the fixed name of the rollup row. It is kept out of the
// sortable row slice and always rendered last.
const GrandTotalName = "Grand Total"

// CategoryRollup is one milestone category summed across a group. Percentages
// are derived from the sums, never averaged from member rows. CountPct treats
// each entity as one unit of budget; MhPct weighs by manhours.
type CategoryRollup struct {
	Name     string  `json:"name"`
	MhBudget float64 `json:"mh_budget"`
	MhEarned float64 `json:"mh_earned"`
	CountPct Percent `json:"count_pct"`
	MhPct    Percent `json:"mh_pct"`
}

// GroupRow is an aggregate over all entities sharing one grouping-key value.
type GroupRow struct {
	Name          string           `json:"name"`
	Count         int              `json:"count"`
	WithActivity  int              `json:"with_activity"`
	MhBudget      float64          `json:"mh_budget"`
	MhEarned      float64          `json:"mh_earned"`
	Categories    []CategoryRollup `json:"categories"`
	PctTotal      Percent          `json:"pct_total"`
	MhPctComplete Percent          `json:"mh_pct_complete"`
}

// Report is a computed row set. Rows excludes the grand total; GrandTotal is
// appended by renderers after any sorting so it stays last.
type Report struct {
	Dimension  Dimension  `json:"dimension"`
	Rows       []GroupRow `json:"rows"`
	GrandTotal GroupRow   `json:"grand_total"`
}

// group accumulates raw sums for one key value before percent derivation.
type group struct {
	name         string
	count        int
	withActivity int
	mhBudget     float64
	mhEarned     float64
	valueSum     map[string]float64 // category -> sum of normalized values
	catBudget    map[string]float64
	catEarned    map[string]float64
	weightPctSum float64
}

func newGroup(name string) *group {
	return &group{
		name:      name,
		valueSum:  make(map[string]float64),
		catBudget: make(map[string]float64),
		catEarned: make(map[string]float64),
	}
}

func (g *group) add(e Entity) {
	g.count++
	if e.HasActivity() {
		g.withActivity++
	}
	g.mhBudget += e.MhBudget
	g.weightPctSum += e.WeightPct
	for _, c := range e.Categories {
		g.mhEarned += c.MhEarned
		g.valueSum[c.Name] += c.Value
		g.catBudget[c.Name] += c.MhBudget
		g.catEarned[c.Name] += c.MhEarned
	}
}

func (g *group) row(categories []string) GroupRow {
	row := GroupRow{
		Name:         g.name,
		Count:        g.count,
		WithActivity: g.withActivity,
		MhBudget:     g.mhBudget,
		MhEarned:     g.mhEarned,
		// Count-based overall: each entity contributes one unit of budget
		// and weightPct/100 units earned, so this is still summed earned
		// over summed budget.
		PctTotal:      SafeDivide(g.weightPctSum/100, float64(g.count)),
		MhPctComplete: SafeDivide(g.mhEarned, g.mhBudget),
	}

	for _, name := range categories {
		row.Categories = append(row.Categories, CategoryRollup{
			Name:     name,
			MhBudget: g.catBudget[name],
			MhEarned: g.catEarned[name],
			CountPct: SafeDivide(g.valueSum[name]/100, float64(g.count)),
			MhPct:    SafeDivide(g.catEarned[name], g.catBudget[name]),
		})
	}

	return row
}

// Aggregate groups entities by dim and produces one row per group plus the
// grand total. Entities without a value for dim are excluded from every row
// including the grand total. An input that yields no groupable entities
// returns ErrNoData so callers can render an explicit empty state instead of
// a zeroed table.
func Aggregate(entities []Entity, dim Dimension) (*Report, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}

	groups := make(map[string]*group)
	var order []string
	var categories []string
	seenCat := make(map[string]bool)
	total := newGroup(GrandTotalName)

	for _, e := range entities {
		key, ok := dim.key(e)
		if !ok {
			continue
		}

		g, ok := groups[key]
		if !ok {
			g = newGroup(key)
			groups[key] = g
			order = append(order, key)
		}
		g.add(e)
		total.add(e)

		// Category column order follows template order, first appearance
		// wins across mixed component types.
		for _, c := range e.Categories {
			if !seenCat[c.Name] {
				seenCat[c.Name] = true
				categories = append(categories, c.Name)
			}
		}
	}

	if total.count == 0 {
		return nil, ErrNoData
	}

	rows := make([]GroupRow, 0, len(groups))
	for _, key := range order {
		rows = append(rows, groups[key].row(categories))
	}

	return &Report{
		Dimension:  dim,
		Rows:       rows,
		GrandTotal: total.row(categories),
	}, nil
}
