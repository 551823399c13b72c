package storage

// MilestoneTemplate is the ordered milestone workflow for one component type.
// milestones_config is stored as a JSON column; weights are integer percents
// and must sum to exactly 100 (enforced at the admin boundary and by the
// report engine before any aggregation).
type MilestoneTemplate struct {
	ID            int64       `json:"id"`
	ComponentType string      `json:"component_type"`
	Version       int         `json:"version"`
	WorkflowType  string      `json:"workflow_type"` // discrete, quantity, hybrid
	Milestones    []Milestone `json:"milestones_config"`
	IsActive      bool        `json:"is_active"`
}

type Milestone struct {
	Name           string `json:"name"`
	Weight         int    `json:"weight"`
	Order          int    `json:"order"`
	IsPartial      bool   `json:"is_partial"`
	RequiresWelder bool   `json:"requires_welder"`
}

// TemplateAdmin is the flattened row shape for the admin template table,
// milestones kept as raw JSON for the list view.
type TemplateAdmin struct {
	ID            int64  `json:"id"`
	ComponentType string `json:"component_type"`
	Version       int    `json:"version"`
	WorkflowType  string `json:"workflow_type"`
	Milestones    string `json:"milestones_config"`
	IsActive      bool   `json:"is_active"`
}
