package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pipetrak/internal/storage"
)

func (s *Storage) GetComponent(ctx context.Context, id int64) (*storage.ComponentRow, error) {
	const op = "storage.mysql.GetComponent"

	stmt := `
		SELECT id, project_id, component_id, component_type, template_version,
		       drawing_number, area, system, test_package, mh_budget, updated_at
		FROM components
		WHERE id = ?
	`

	var c storage.ComponentRow
	err := s.db.QueryRowContext(ctx, stmt, id).Scan(&c.ID, &c.ProjectID, &c.ComponentID, &c.ComponentType,
		&c.TemplateVersion, &c.DrawingNumber, &c.Area, &c.System, &c.TestPackage, &c.MhBudget, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: component %d not found: %w", op, id, err)
		}
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	c.Milestones = make(map[string]float64)

	rows, err := s.db.QueryContext(ctx, "SELECT milestone_name, value FROM component_milestones WHERE component_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("%s: query milestones: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("%s: scan milestone: %w", op, err)
		}
		c.Milestones[name] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: milestone rows: %w", op, err)
	}

	return &c, nil
}

// UpdateComponentMilestone writes one milestone value, the recomputed overall
// percent and a history row in a single transaction. percentAfter is computed
// by the caller against the component's template before the write.
func (s *Storage) UpdateComponentMilestone(ctx context.Context, upd storage.MilestoneUpdate, percentAfter float64) error {
	const op = "storage.mysql.UpdateComponentMilestone"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO component_milestones (component_id, milestone_name, value, welder_id)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			value = VALUES(value),
			welder_id = VALUES(welder_id)
	`, upd.ComponentID, upd.MilestoneName, upd.Value, upd.WelderID)
	if err != nil {
		return fmt.Errorf("%s: upsert milestone value: %w", op, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE components SET percent_complete = ?, updated_at = NOW() WHERE id = ?
	`, percentAfter, upd.ComponentID)
	if err != nil {
		return fmt.Errorf("%s: update component percent: %w", op, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO milestone_history (component_id, milestone_name, value, updated_by, recorded_at)
		VALUES (?, ?, ?, ?, NOW())
	`, upd.ComponentID, upd.MilestoneName, upd.Value, upd.UpdatedBy)
	if err != nil {
		return fmt.Errorf("%s: insert history: %w", op, err)
	}

	return tx.Commit()
}
