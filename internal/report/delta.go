package report

import (
	"fmt"

	"pipetrak/internal/storage"
)

// CategoryDelta is the change in earned manhours for one milestone category
// across the window. MhBudget is the current (end-of-window) category budget,
// which is also the denominator for the delta percent.
type CategoryDelta struct {
	Name          string  `json:"name"`
	MhBudget      float64 `json:"mh_budget"`
	DeltaMhEarned float64 `json:"delta_mh_earned"`
	DeltaPct      Percent `json:"delta_pct"`
}

// DeltaRow is the windowed counterpart of GroupRow. WithActivity counts only
// entities whose earned value moved inside the window; entities with all-zero
// deltas are excluded from the row entirely.
type DeltaRow struct {
	Name          string          `json:"name"`
	WithActivity  int             `json:"with_activity"`
	MhBudget      float64         `json:"mh_budget"`
	DeltaMhEarned float64         `json:"delta_mh_earned"`
	DeltaPct      Percent         `json:"delta_pct"`
	Categories    []CategoryDelta `json:"categories"`
}

type DeltaReport struct {
	Dimension  Dimension  `json:"dimension"`
	Range      DateRange  `json:"range"`
	Rows       []DeltaRow `json:"rows"`
	GrandTotal DeltaRow   `json:"grand_total"`
}

type deltaGroup struct {
	name         string
	withActivity int
	mhBudget     float64
	deltaEarned  float64
	catBudget    map[string]float64
	catDelta     map[string]float64
}

func newDeltaGroup(name string) *deltaGroup {
	return &deltaGroup{
		name:      name,
		catBudget: make(map[string]float64),
		catDelta:  make(map[string]float64),
	}
}

func (g *deltaGroup) row(categories []string) DeltaRow {
	row := DeltaRow{
		Name:          g.name,
		WithActivity:  g.withActivity,
		MhBudget:      g.mhBudget,
		DeltaMhEarned: g.deltaEarned,
		DeltaPct:      SafeDivide(g.deltaEarned, g.mhBudget),
	}
	for _, name := range categories {
		row.Categories = append(row.Categories, CategoryDelta{
			Name:          name,
			MhBudget:      g.catBudget[name],
			DeltaMhEarned: g.catDelta[name],
			DeltaPct:      SafeDivide(g.catDelta[name], g.catBudget[name]),
		})
	}
	return row
}

// DeltaAggregate computes per-group earned-value change between the window
// start and now. end carries the current state; start maps entity ID to the
// categories resolved from the start-of-window snapshot (absent means the
// entity did not exist yet, so its start earned is zero).
//
// Budgets are always the current ones, never a windowed budget delta.
// No entity moving inside the window returns ErrNoActivity, a renderable
// state rather than an error condition for callers.
func DeltaAggregate(end []Entity, start map[string][]CategoryProgress, dim Dimension, rng DateRange) (*DeltaReport, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}

	groups := make(map[string]*deltaGroup)
	var order []string
	var categories []string
	seenCat := make(map[string]bool)
	total := newDeltaGroup(GrandTotalName)
	active := 0

	for _, e := range end {
		key, ok := dim.key(e)
		if !ok {
			continue
		}

		startEarned := make(map[string]float64, len(e.Categories))
		for _, c := range start[e.ID] {
			startEarned[c.Name] = c.MhEarned
		}

		moved := false
		deltas := make([]CategoryDelta, 0, len(e.Categories))
		for _, c := range e.Categories {
			d := c.MhEarned - startEarned[c.Name]
			if d != 0 {
				moved = true
			}
			deltas = append(deltas, CategoryDelta{Name: c.Name, MhBudget: c.MhBudget, DeltaMhEarned: d})
		}
		if !moved {
			continue
		}
		active++

		g, ok := groups[key]
		if !ok {
			g = newDeltaGroup(key)
			groups[key] = g
			order = append(order, key)
		}

		for _, grp := range []*deltaGroup{g, total} {
			grp.withActivity++
			grp.mhBudget += e.MhBudget
			for _, d := range deltas {
				grp.deltaEarned += d.DeltaMhEarned
				grp.catBudget[d.Name] += d.MhBudget
				grp.catDelta[d.Name] += d.DeltaMhEarned
			}
		}

		for _, c := range e.Categories {
			if !seenCat[c.Name] {
				seenCat[c.Name] = true
				categories = append(categories, c.Name)
			}
		}
	}

	if active == 0 {
		return nil, ErrNoActivity
	}

	rows := make([]DeltaRow, 0, len(groups))
	for _, key := range order {
		rows = append(rows, groups[key].row(categories))
	}

	return &DeltaReport{
		Dimension:  dim,
		Range:      rng,
		Rows:       rows,
		GrandTotal: total.row(categories),
	}, nil
}

// WeldDeltaRow is the count-based delta row for field welds: integer counts,
// same sign and formatting rules as manhour deltas.
type WeldDeltaRow struct {
	Name                   string `json:"name"`
	WeldsWithActivity      int    `json:"welds_with_activity"`
	DeltaFitupCount        int    `json:"delta_fitup_count"`
	DeltaWeldCompleteCount int    `json:"delta_weld_complete_count"`
	DeltaAcceptedCount     int    `json:"delta_accepted_count"`
	DeltaNewWelds          int    `json:"delta_new_welds"`
}

type WeldDeltaReport struct {
	Dimension  Dimension      `json:"dimension"`
	Range      DateRange      `json:"range"`
	Rows       []WeldDeltaRow `json:"rows"`
	GrandTotal WeldDeltaRow   `json:"grand_total"`
}

// WeldCountDeltas computes weld count changes across the window. start maps
// weld ID to its state at the window start; welds absent from start count as
// new welds.
func WeldCountDeltas(end []storage.FieldWeldRow, start map[int64]storage.WeldStateSnapshot, dim Dimension, rng DateRange) (*WeldDeltaReport, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}

	groups := make(map[string]*WeldDeltaRow)
	var order []string
	total := WeldDeltaRow{Name: GrandTotalName}
	active := 0

	for _, w := range end {
		key, ok := dim.weldKey(w)
		if !ok {
			continue
		}

		prev, existed := start[w.ID]

		var d WeldDeltaRow
		d.DeltaFitupCount = boolDelta(w.FitupDone, prev.FitupDone)
		d.DeltaWeldCompleteCount = boolDelta(w.WeldDone, prev.WeldDone)
		d.DeltaAcceptedCount = boolDelta(weldAccepted(w), prev.NDEAccepted)
		if !existed {
			d.DeltaNewWelds = 1
		}

		if d.DeltaFitupCount == 0 && d.DeltaWeldCompleteCount == 0 && d.DeltaAcceptedCount == 0 && d.DeltaNewWelds == 0 {
			continue
		}
		active++

		g, ok := groups[key]
		if !ok {
			g = &WeldDeltaRow{Name: key}
			groups[key] = g
			order = append(order, key)
		}

		for _, row := range []*WeldDeltaRow{g, &total} {
			row.WeldsWithActivity++
			row.DeltaFitupCount += d.DeltaFitupCount
			row.DeltaWeldCompleteCount += d.DeltaWeldCompleteCount
			row.DeltaAcceptedCount += d.DeltaAcceptedCount
			row.DeltaNewWelds += d.DeltaNewWelds
		}
	}

	if active == 0 {
		return nil, ErrNoActivity
	}

	rows := make([]WeldDeltaRow, 0, len(groups))
	for _, key := range order {
		rows = append(rows, *groups[key])
	}

	return &WeldDeltaReport{
		Dimension:  dim,
		Range:      rng,
		Rows:       rows,
		GrandTotal: total,
	}, nil
}

func weldAccepted(w storage.FieldWeldRow) bool {
	return w.NDEResult != nil && *w.NDEResult == "accept"
}

func boolDelta(now, before bool) int {
	switch {
	case now && !before:
		return 1
	case !now && before:
		return -1
	default:
		return 0
	}
}
