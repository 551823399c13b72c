package report

import (
	"sort"
	"strings"
)

// SortConfig is the caller-selected sort column and direction. It is passed
// in explicitly; the engine holds no ambient sort state. The grand total row
// lives outside the sorted slice, so it is pinned last by construction.
type SortConfig struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
}

// Sort columns shared by progress and delta rows. Category columns are
// addressed by the category name itself.
const (
	SortByName         = "name"
	SortByCount        = "count"
	SortByWithActivity = "with_activity"
	SortByMhBudget     = "mh_budget"
	SortByMhEarned     = "mh_earned"
	SortByPctTotal     = "pct_total"
	SortByMhPct        = "mh_pct_complete"
	SortByDeltaMh      = "delta_mh_earned"
	SortByDeltaPct     = "delta_mh_pct"
)

// SortRows orders rows in place. Name sorts lexically (case-insensitive);
// numeric columns sort numerically with undefined values last regardless of
// direction.
func SortRows(rows []GroupRow, cfg SortConfig) {
	if cfg.Column == "" || cfg.Column == SortByName {
		sort.SliceStable(rows, func(i, j int) bool {
			return lessName(rows[i].Name, rows[j].Name, cfg.Descending)
		})
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		vi, oki := groupRowValue(rows[i], cfg.Column)
		vj, okj := groupRowValue(rows[j], cfg.Column)
		return lessValue(vi, oki, vj, okj, cfg.Descending)
	})
}

// SortDeltaRows orders delta rows in place under the same contract.
func SortDeltaRows(rows []DeltaRow, cfg SortConfig) {
	if cfg.Column == "" || cfg.Column == SortByName {
		sort.SliceStable(rows, func(i, j int) bool {
			return lessName(rows[i].Name, rows[j].Name, cfg.Descending)
		})
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		vi, oki := deltaRowValue(rows[i], cfg.Column)
		vj, okj := deltaRowValue(rows[j], cfg.Column)
		return lessValue(vi, oki, vj, okj, cfg.Descending)
	})
}

func lessName(a, b string, desc bool) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if desc {
		return la > lb
	}
	return la < lb
}

// lessValue keeps undefined values after every defined value in both
// directions.
func lessValue(vi float64, oki bool, vj float64, okj, desc bool) bool {
	if oki != okj {
		return oki
	}
	if !oki {
		return false
	}
	if desc {
		return vi > vj
	}
	return vi < vj
}

func groupRowValue(r GroupRow, column string) (float64, bool) {
	switch column {
	case SortByCount:
		return float64(r.Count), true
	case SortByWithActivity:
		return float64(r.WithActivity), true
	case SortByMhBudget:
		return r.MhBudget, true
	case SortByMhEarned:
		return r.MhEarned, true
	case SortByPctTotal:
		return r.PctTotal.Value, r.PctTotal.Valid
	case SortByMhPct:
		return r.MhPctComplete.Value, r.MhPctComplete.Valid
	}
	for _, c := range r.Categories {
		if c.Name == column {
			return c.MhPct.Value, c.MhPct.Valid
		}
	}
	return 0, false
}

func deltaRowValue(r DeltaRow, column string) (float64, bool) {
	switch column {
	case SortByWithActivity:
		return float64(r.WithActivity), true
	case SortByMhBudget:
		return r.MhBudget, true
	case SortByDeltaMh:
		return r.DeltaMhEarned, true
	case SortByDeltaPct:
		return r.DeltaPct.Value, r.DeltaPct.Valid
	}
	for _, c := range r.Categories {
		if c.Name == column {
			return c.DeltaMhEarned, true
		}
	}
	return 0, false
}
