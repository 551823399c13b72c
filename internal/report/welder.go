package report

import (
	"sort"

	"pipetrak/internal/storage"
)

// XrayTiers are the inspection-percentage buckets welds are partitioned into
// for welder scoring. Welds carrying any other tier value are bad data and
// are excluded the same way null grouping keys are.
var XrayTiers = []int{5, 10, 100}

// TierStat is one welder's numbers inside one X-ray tier. The rates reuse the
// budget-free zero-guarded percent: no welds in the tier means "--", not 0%.
type TierStat struct {
	Welds        int     `json:"welds"`
	NDEPerformed int     `json:"nde_performed"`
	Rejects      int     `json:"rejects"`
	RejectRate   Percent `json:"reject_rate"`
	NDERate      Percent `json:"nde_rate"`
}

func (t *TierStat) add(w storage.FieldWeldRow) {
	t.Welds++
	if w.NDEPerformed {
		t.NDEPerformed++
	}
	if w.NDEResult != nil && *w.NDEResult == "reject" {
		t.Rejects++
	}
}

func (t *TierStat) finalize() {
	t.RejectRate = SafeDivide(float64(t.Rejects), float64(t.Welds))
	t.NDERate = SafeDivide(float64(t.NDEPerformed), float64(t.Welds))
}

// WelderSummaryRow holds one welder's per-tier stats plus the overall column
// summed across tiers.
type WelderSummaryRow struct {
	Welder  string           `json:"welder"`
	Tiers   map[int]TierStat `json:"tiers"`
	Overall TierStat         `json:"overall"`
}

type WelderReport struct {
	Rows       []WelderSummaryRow `json:"rows"`
	GrandTotal WelderSummaryRow   `json:"grand_total"`
}

// WelderSummary partitions welds by welder and X-ray tier and derives reject
// and NDE-completion rates per tier, per welder and across all welders.
// Welds without a welder are excluded. No scorable welds returns ErrNoData.
func WelderSummary(welds []storage.FieldWeldRow) (*WelderReport, error) {
	perWelder := make(map[string]map[int]*TierStat)
	totalTiers := make(map[int]*TierStat)
	for _, tier := range XrayTiers {
		totalTiers[tier] = &TierStat{}
	}

	scored := 0
	for _, w := range welds {
		if w.WelderName == nil || *w.WelderName == "" {
			continue
		}
		if _, ok := totalTiers[w.XrayPercent]; !ok {
			continue
		}
		scored++

		tiers, ok := perWelder[*w.WelderName]
		if !ok {
			tiers = make(map[int]*TierStat)
			for _, tier := range XrayTiers {
				tiers[tier] = &TierStat{}
			}
			perWelder[*w.WelderName] = tiers
		}
		tiers[w.XrayPercent].add(w)
		totalTiers[w.XrayPercent].add(w)
	}

	if scored == 0 {
		return nil, ErrNoData
	}

	rows := make([]WelderSummaryRow, 0, len(perWelder))
	for name, tiers := range perWelder {
		rows = append(rows, buildWelderRow(name, tiers))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Welder < rows[j].Welder })

	return &WelderReport{
		Rows:       rows,
		GrandTotal: buildWelderRow(GrandTotalName, totalTiers),
	}, nil
}

func buildWelderRow(name string, tiers map[int]*TierStat) WelderSummaryRow {
	row := WelderSummaryRow{Welder: name, Tiers: make(map[int]TierStat, len(XrayTiers))}
	for _, tier := range XrayTiers {
		t := *tiers[tier]
		t.finalize()
		row.Tiers[tier] = t

		row.Overall.Welds += t.Welds
		row.Overall.NDEPerformed += t.NDEPerformed
		row.Overall.Rejects += t.Rejects
	}
	row.Overall.finalize()
	return row
}
