package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sortRows() []GroupRow {
	return []GroupRow{
		{Name: "beta", MhBudget: 50, MhPctComplete: Percent{Value: 80, Valid: true}},
		{Name: "Alpha", MhBudget: 200, MhPctComplete: Percent{}},
		{Name: "gamma", MhBudget: 100, MhPctComplete: Percent{Value: 20, Valid: true}},
	}
}

func TestSortRows_NameLexical(t *testing.T) {
	rows := sortRows()
	SortRows(rows, SortConfig{Column: SortByName})
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, rowNames(rows))

	SortRows(rows, SortConfig{Column: SortByName, Descending: true})
	assert.Equal(t, []string{"gamma", "beta", "Alpha"}, rowNames(rows))
}

func TestSortRows_NumericWithNullsLast(t *testing.T) {
	rows := sortRows()
	SortRows(rows, SortConfig{Column: SortByMhPct})
	// Alpha has an undefined percent and sorts last ascending...
	assert.Equal(t, []string{"gamma", "beta", "Alpha"}, rowNames(rows))

	SortRows(rows, SortConfig{Column: SortByMhPct, Descending: true})
	// ...and still last descending.
	assert.Equal(t, []string{"beta", "gamma", "Alpha"}, rowNames(rows))
}

func TestSortRows_ByBudget(t *testing.T) {
	rows := sortRows()
	SortRows(rows, SortConfig{Column: SortByMhBudget, Descending: true})
	assert.Equal(t, []string{"Alpha", "gamma", "beta"}, rowNames(rows))
}

func TestSortRows_ByCategoryColumn(t *testing.T) {
	rows := []GroupRow{
		{Name: "A", Categories: []CategoryRollup{{Name: "Erect", MhPct: Percent{Value: 10, Valid: true}}}},
		{Name: "B", Categories: []CategoryRollup{{Name: "Erect", MhPct: Percent{}}}},
		{Name: "C", Categories: []CategoryRollup{{Name: "Erect", MhPct: Percent{Value: 90, Valid: true}}}},
	}
	SortRows(rows, SortConfig{Column: "Erect", Descending: true})
	assert.Equal(t, []string{"C", "A", "B"}, rowNames(rows))
}

// The grand total is not part of the sortable slice at all; sorting any
// column in either direction cannot displace it from last position.
func TestSort_GrandTotalPinnedLast(t *testing.T) {
	rep := &Report{
		Rows:       sortRows(),
		GrandTotal: GroupRow{Name: GrandTotalName, MhBudget: 350},
	}

	for _, cfg := range []SortConfig{
		{Column: SortByName},
		{Column: SortByName, Descending: true},
		{Column: SortByMhBudget, Descending: true},
		{Column: SortByMhPct},
	} {
		SortRows(rep.Rows, cfg)
		rendered := append(rowNames(rep.Rows), rep.GrandTotal.Name)
		assert.Equal(t, GrandTotalName, rendered[len(rendered)-1], "cfg %+v", cfg)
		for _, name := range rendered[:len(rendered)-1] {
			assert.NotEqual(t, GrandTotalName, name)
		}
	}
}

func TestSortDeltaRows(t *testing.T) {
	rows := []DeltaRow{
		{Name: "B", DeltaMhEarned: -3},
		{Name: "A", DeltaMhEarned: 12},
		{Name: "C", DeltaMhEarned: 0.5},
	}

	SortDeltaRows(rows, SortConfig{Column: SortByDeltaMh, Descending: true})
	assert.Equal(t, "A", rows[0].Name)
	assert.Equal(t, "C", rows[1].Name)
	assert.Equal(t, "B", rows[2].Name)

	SortDeltaRows(rows, SortConfig{Column: SortByName})
	assert.Equal(t, "A", rows[0].Name)
}

func rowNames(rows []GroupRow) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names
}
