package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipetrak/internal/storage"
)

func TestDeltaAggregate_EndMinusStart(t *testing.T) {
	end := []Entity{entity("c1", strPtr("A"), 100, 60)}
	start := map[string][]CategoryProgress{
		"c1": {{Name: "Install", MhBudget: 100, MhEarned: 25}},
	}

	rep, err := DeltaAggregate(end, start, DimensionArea, DateRange{Preset: PresetLast7Days})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)

	row := rep.Rows[0]
	assert.InDelta(t, 35.0, row.DeltaMhEarned, 1e-9)
	// Denominator is the current budget, not a windowed budget delta.
	assert.InDelta(t, 100.0, row.MhBudget, 1e-9)
	require.True(t, row.DeltaPct.Valid)
	assert.InDelta(t, 35.0, row.DeltaPct.Value, 1e-9)
}

func TestDeltaAggregate_MissingStartMeansNew(t *testing.T) {
	// A component absent from the start snapshot starts from zero earned.
	end := []Entity{entity("c1", strPtr("A"), 100, 40)}

	rep, err := DeltaAggregate(end, nil, DimensionArea, DateRange{Preset: PresetLast30Days})
	require.NoError(t, err)
	assert.InDelta(t, 40.0, rep.GrandTotal.DeltaMhEarned, 1e-9)
}

func TestDeltaAggregate_ZeroActivityExcluded(t *testing.T) {
	end := []Entity{
		entity("c1", strPtr("A"), 100, 60),
		entity("c2", strPtr("A"), 100, 30), // unchanged in window
	}
	start := map[string][]CategoryProgress{
		"c1": {{Name: "Install", MhBudget: 100, MhEarned: 50}},
		"c2": {{Name: "Install", MhBudget: 100, MhEarned: 30}},
	}

	rep, err := DeltaAggregate(end, start, DimensionArea, DateRange{Preset: PresetYTD})
	require.NoError(t, err)

	// Only the moving component contributes: counts, budget and delta.
	assert.Equal(t, 1, rep.Rows[0].WithActivity)
	assert.InDelta(t, 100.0, rep.Rows[0].MhBudget, 1e-9)
	assert.InDelta(t, 10.0, rep.Rows[0].DeltaMhEarned, 1e-9)
}

func TestDeltaAggregate_AllQuietIsNoActivity(t *testing.T) {
	// The only entity did not move; that is a renderable empty state, not a
	// zeroed grand total.
	end := []Entity{entity("c1", strPtr("A"), 100, 30)}
	start := map[string][]CategoryProgress{
		"c1": {{Name: "Install", MhBudget: 100, MhEarned: 30}},
	}

	_, err := DeltaAggregate(end, start, DimensionArea, DateRange{Preset: PresetLast90Days})
	assert.ErrorIs(t, err, ErrNoActivity)
}

func TestDeltaAggregate_NegativeDelta(t *testing.T) {
	// Milestones can be rolled back; the delta goes negative.
	end := []Entity{entity("c1", strPtr("A"), 100, 8)}
	start := map[string][]CategoryProgress{
		"c1": {{Name: "Install", MhBudget: 100, MhEarned: 20}},
	}

	rep, err := DeltaAggregate(end, start, DimensionArea, DateRange{Preset: PresetLast7Days})
	require.NoError(t, err)
	assert.InDelta(t, -12.0, rep.GrandTotal.DeltaMhEarned, 1e-9)

	text, class := FormatDeltaManhours(rep.GrandTotal.DeltaMhEarned)
	assert.Equal(t, "-12 MH", text)
	assert.Equal(t, SignNegative, class)
}

func TestDeltaAggregate_GrandTotalSumsMembers(t *testing.T) {
	end := []Entity{
		entity("c1", strPtr("A"), 100, 50),
		entity("c2", strPtr("B"), 60, 12),
	}
	start := map[string][]CategoryProgress{
		"c1": {{Name: "Install", MhBudget: 100, MhEarned: 10}},
	}

	rep, err := DeltaAggregate(end, start, DimensionArea, DateRange{Preset: PresetLast7Days})
	require.NoError(t, err)

	var delta, budget float64
	for _, row := range rep.Rows {
		delta += row.DeltaMhEarned
		budget += row.MhBudget
	}
	assert.InDelta(t, delta, rep.GrandTotal.DeltaMhEarned, 1e-9)
	assert.InDelta(t, budget, rep.GrandTotal.MhBudget, 1e-9)
}

func TestDateRange_Window(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	start, end, ok := DateRange{Preset: PresetLast7Days}.Window(now)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -7), start)
	assert.Equal(t, now, end)

	start, _, ok = DateRange{Preset: PresetYTD}.Window(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)

	_, _, ok = DateRange{Preset: PresetAllTime}.Window(now)
	assert.False(t, ok)
}

func TestDateRange_CustomNeedsBothDates(t *testing.T) {
	now := time.Now()
	from := now.AddDate(0, -1, 0)

	_, _, ok := DateRange{Preset: PresetCustom, Start: &from}.Window(now)
	assert.False(t, ok)

	_, _, ok = DateRange{Preset: PresetCustom, End: &now}.Window(now)
	assert.False(t, ok)

	start, end, ok := DateRange{Preset: PresetCustom, Start: &from, End: &now}.Window(now)
	require.True(t, ok)
	assert.Equal(t, from, start)
	assert.Equal(t, now, end)
}

func TestDateRange_DeltaMode(t *testing.T) {
	assert.False(t, DateRange{}.DeltaMode())
	assert.False(t, DateRange{Preset: PresetAllTime}.DeltaMode())
	assert.True(t, DateRange{Preset: PresetLast30Days}.DeltaMode())
	assert.True(t, DateRange{Preset: PresetCustom}.DeltaMode())
}

func weld(id int64, area string, welder string, fitup, done bool, nde *string) storage.FieldWeldRow {
	w := storage.FieldWeldRow{
		ID:          id,
		Area:        strPtr(area),
		XrayPercent: 10,
		FitupDone:   fitup,
		WeldDone:    done,
		NDEResult:   nde,
	}
	if nde != nil {
		w.NDEPerformed = true
	}
	if welder != "" {
		w.WelderName = strPtr(welder)
	}
	return w
}

func TestWeldCountDeltas(t *testing.T) {
	accept := "accept"
	end := []storage.FieldWeldRow{
		weld(1, "A", "W1", true, true, &accept), // existed: fitup+weld+accept all new
		weld(2, "A", "W1", true, false, nil),    // brand new weld, fitup only
		weld(3, "B", "W2", false, false, nil),   // existed, nothing changed
	}
	start := map[int64]storage.WeldStateSnapshot{
		1: {WeldID: 1, FitupDone: true},
		3: {WeldID: 3},
	}

	rep, err := WeldCountDeltas(end, start, DimensionArea, DateRange{Preset: PresetLast7Days})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1) // area B had no movement

	row := rep.Rows[0]
	assert.Equal(t, "A", row.Name)
	assert.Equal(t, 2, row.WeldsWithActivity)
	assert.Equal(t, 1, row.DeltaFitupCount) // weld 1 already fit up at start
	assert.Equal(t, 1, row.DeltaWeldCompleteCount)
	assert.Equal(t, 1, row.DeltaAcceptedCount)
	assert.Equal(t, 1, row.DeltaNewWelds)

	assert.Equal(t, row, WeldDeltaRow{
		Name:                   "A",
		WeldsWithActivity:      2,
		DeltaFitupCount:        1,
		DeltaWeldCompleteCount: 1,
		DeltaAcceptedCount:     1,
		DeltaNewWelds:          1,
	})
	assert.Equal(t, GrandTotalName, rep.GrandTotal.Name)
}

func TestWeldCountDeltas_NoActivity(t *testing.T) {
	end := []storage.FieldWeldRow{weld(3, "B", "W2", true, false, nil)}
	start := map[int64]storage.WeldStateSnapshot{
		3: {WeldID: 3, FitupDone: true},
	}

	_, err := WeldCountDeltas(end, start, DimensionArea, DateRange{Preset: PresetLast7Days})
	assert.ErrorIs(t, err, ErrNoActivity)
}
