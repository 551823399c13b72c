package mysql

import (
	"context"
	"fmt"

	"pipetrak/internal/storage"
)

// GetComponents returns a project's components with their current milestone
// values. Components and values come from two queries; values are folded into
// each component's map by component id.
func (s *Storage) GetComponents(ctx context.Context, projectID int64) ([]storage.ComponentRow, error) {
	const op = "storage.mysql.GetComponents"

	stmt := `
		SELECT id, project_id, component_id, component_type, template_version,
		       drawing_number, area, system, test_package, mh_budget, updated_at
		FROM components
		WHERE project_id = ?
		ORDER BY component_id
	`

	rows, err := s.db.QueryContext(ctx, stmt, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: query components: %w", op, err)
	}
	defer rows.Close()

	var components []storage.ComponentRow
	index := make(map[int64]int)

	for rows.Next() {
		var c storage.ComponentRow
		err := rows.Scan(&c.ID, &c.ProjectID, &c.ComponentID, &c.ComponentType, &c.TemplateVersion,
			&c.DrawingNumber, &c.Area, &c.System, &c.TestPackage, &c.MhBudget, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: scan component: %w", op, err)
		}
		c.Milestones = make(map[string]float64)
		index[c.ID] = len(components)
		components = append(components, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: components rows: %w", op, err)
	}

	stmtValues := `
		SELECT cm.component_id, cm.milestone_name, cm.value
		FROM component_milestones cm
		JOIN components c ON c.id = cm.component_id
		WHERE c.project_id = ?
	`

	valueRows, err := s.db.QueryContext(ctx, stmtValues, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: query milestone values: %w", op, err)
	}
	defer valueRows.Close()

	for valueRows.Next() {
		var componentID int64
		var name string
		var value float64
		if err := valueRows.Scan(&componentID, &name, &value); err != nil {
			return nil, fmt.Errorf("%s: scan milestone value: %w", op, err)
		}
		if i, ok := index[componentID]; ok {
			components[i].Milestones[name] = value
		}
	}
	if err = valueRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: milestone rows: %w", op, err)
	}

	return components, nil
}
