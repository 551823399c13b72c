package storage

import "time"

// ComponentRow is a component with its current milestone values, as read for
// report generation. Area/System/TestPackage are nullable in the schema;
// components with a missing grouping key are excluded from the grouped rows
// for that dimension.
type ComponentRow struct {
	ID              int64              `json:"id"`
	ProjectID       int64              `json:"project_id"`
	ComponentID     string             `json:"component_id"`
	ComponentType   string             `json:"component_type"`
	TemplateVersion int                `json:"template_version"`
	DrawingNumber   string             `json:"drawing_number"`
	Area            *string            `json:"area"`
	System          *string            `json:"system"`
	TestPackage     *string            `json:"test_package"`
	MhBudget        float64            `json:"mh_budget"`
	Milestones      map[string]float64 `json:"milestones"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// MilestoneSnapshot is one component's milestone values as of a cutoff
// instant, reconstructed from the milestone history table. Used as the
// start-of-window state for delta reports.
type MilestoneSnapshot struct {
	ComponentID int64              `json:"component_id"`
	Milestones  map[string]float64 `json:"milestones"`
}

// MilestoneUpdate is the write payload for update_component_milestone.
type MilestoneUpdate struct {
	ComponentID   int64    `json:"component_id"`
	MilestoneName string   `json:"milestone_name"`
	Value         float64  `json:"value"`
	WelderID      *int64   `json:"welder_id,omitempty"`
	UpdatedBy     string   `json:"updated_by"`
	PercentAfter  *float64 `json:"percent_after,omitempty"`
}
