package storage

import "time"

// FieldWeldRow is a field weld with its inspection state. XrayPercent is the
// weld's inspection tier (5, 10 or 100). NDEResult is null until NDE has been
// performed, then "accept" or "reject".
type FieldWeldRow struct {
	ID           int64      `json:"id"`
	ProjectID    int64      `json:"project_id"`
	WeldNumber   string     `json:"weld_number"`
	Area         *string    `json:"area"`
	System       *string    `json:"system"`
	TestPackage  *string    `json:"test_package"`
	WelderID     *int64     `json:"welder_id"`
	WelderName   *string    `json:"welder_name"`
	XrayPercent  int        `json:"xray_percent"`
	FitupDone    bool       `json:"fitup_done"`
	WeldDone     bool       `json:"weld_done"`
	NDEPerformed bool       `json:"nde_performed"`
	NDEResult    *string    `json:"nde_result"`
	MhBudget     float64    `json:"mh_budget"`
	DateWelded   *time.Time `json:"date_welded"`
	CreatedAt    time.Time  `json:"created_at"`
}

// WeldStateSnapshot is a weld's countable state as of a cutoff instant, used
// for weld count deltas.
type WeldStateSnapshot struct {
	WeldID       int64 `json:"weld_id"`
	FitupDone    bool  `json:"fitup_done"`
	WeldDone     bool  `json:"weld_done"`
	NDEAccepted  bool  `json:"nde_accepted"`
	NDEPerformed bool  `json:"nde_performed"`
}

type Welder struct {
	ID      int64  `json:"id"`
	Stencil string `json:"stencil"`
	Name    string `json:"name"`
}
