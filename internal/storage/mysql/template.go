package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pipetrak/internal/storage"
)

func (s *Storage) GetTemplate(ctx context.Context, componentType string, version int) (*storage.MilestoneTemplate, error) {
	const op = "storage.mysql.GetTemplate"

	query := `
		SELECT id, component_type, version, workflow_type, milestones_config, is_active
		FROM milestone_templates
		WHERE component_type = ? AND version = ?
	`

	tmpl := &storage.MilestoneTemplate{}

	var milestonesJSON string
	err := s.db.QueryRowContext(ctx, query, componentType, version).Scan(
		&tmpl.ID,
		&tmpl.ComponentType,
		&tmpl.Version,
		&tmpl.WorkflowType,
		&milestonesJSON,
		&tmpl.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: template %s v%d not found: %w", op, componentType, version, err)
		}
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	if err := json.Unmarshal([]byte(milestonesJSON), &tmpl.Milestones); err != nil {
		return nil, fmt.Errorf("%s: parse milestones_config: %w", op, err)
	}

	return tmpl, nil
}

// GetActiveTemplates returns every active template, milestones parsed.
// Report generation indexes them by (component_type, version).
func (s *Storage) GetActiveTemplates(ctx context.Context) ([]*storage.MilestoneTemplate, error) {
	const op = "storage.mysql.GetActiveTemplates"

	stmt := `
		SELECT id, component_type, version, workflow_type, milestones_config, is_active
		FROM milestone_templates
		WHERE is_active = TRUE
	`

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var templates []*storage.MilestoneTemplate

	for rows.Next() {
		tmpl := &storage.MilestoneTemplate{}
		var milestonesJSON string

		err := rows.Scan(&tmpl.ID, &tmpl.ComponentType, &tmpl.Version, &tmpl.WorkflowType, &milestonesJSON, &tmpl.IsActive)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		if err := json.Unmarshal([]byte(milestonesJSON), &tmpl.Milestones); err != nil {
			return nil, fmt.Errorf("%s: parse milestones_config for %s v%d: %w", op, tmpl.ComponentType, tmpl.Version, err)
		}

		templates = append(templates, tmpl)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return templates, nil
}

func (s *Storage) GetAllTemplatesAdmin(ctx context.Context) ([]*storage.TemplateAdmin, error) {
	const op = "storage.mysql.GetAllTemplatesAdmin"

	stmt := "SELECT id, component_type, version, workflow_type, milestones_config, is_active FROM milestone_templates"

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var templates []*storage.TemplateAdmin

	for rows.Next() {
		tmpl := &storage.TemplateAdmin{}
		err := rows.Scan(&tmpl.ID, &tmpl.ComponentType, &tmpl.Version, &tmpl.WorkflowType, &tmpl.Milestones, &tmpl.IsActive)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		templates = append(templates, tmpl)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return templates, nil
}

// SaveTemplate inserts a new template version. Weight/order invariants are
// checked by the handler before this is called.
func (s *Storage) SaveTemplate(ctx context.Context, tmpl storage.MilestoneTemplate) (int64, error) {
	const op = "storage.mysql.SaveTemplate"

	milestonesJSON, err := json.Marshal(tmpl.Milestones)
	if err != nil {
		return 0, fmt.Errorf("%s: marshal milestones: %w", op, err)
	}

	stmt := `
		INSERT INTO milestone_templates (component_type, version, workflow_type, milestones_config, is_active)
		VALUES (?, ?, ?, ?, ?)
	`

	exec, err := s.db.ExecContext(ctx, stmt, tmpl.ComponentType, tmpl.Version, tmpl.WorkflowType, string(milestonesJSON), tmpl.IsActive)
	if err != nil {
		return 0, fmt.Errorf("%s: insert: %w", op, err)
	}

	return exec.LastInsertId()
}

func (s *Storage) UpdateTemplate(ctx context.Context, id int64, tmpl storage.MilestoneTemplate) error {
	const op = "storage.mysql.UpdateTemplate"

	milestonesJSON, err := json.Marshal(tmpl.Milestones)
	if err != nil {
		return fmt.Errorf("%s: marshal milestones: %w", op, err)
	}

	stmt := `
		UPDATE milestone_templates
		SET workflow_type = ?, milestones_config = ?, is_active = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, stmt, tmpl.WorkflowType, string(milestonesJSON), tmpl.IsActive, id)
	if err != nil {
		return fmt.Errorf("%s: update: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: template %d not found", op, id)
	}

	return nil
}
