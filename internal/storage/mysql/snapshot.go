package mysql

import (
	"context"
	"fmt"
	"time"

	"pipetrak/internal/storage"
)

// GetMilestoneSnapshots reconstructs each component's milestone values as of
// the cutoff instant from the milestone history table: the latest recorded
// value per (component, milestone) at or before the cutoff. Components with
// no history before the cutoff are absent from the result, which delta
// computation reads as zero earned at window start.
func (s *Storage) GetMilestoneSnapshots(ctx context.Context, projectID int64, cutoff time.Time) ([]storage.MilestoneSnapshot, error) {
	const op = "storage.mysql.GetMilestoneSnapshots"

	stmt := `
		SELECT h.component_id, h.milestone_name, h.value
		FROM milestone_history h
		JOIN components c ON c.id = h.component_id
		WHERE c.project_id = ?
		  AND h.recorded_at <= ?
		  AND h.recorded_at = (
			SELECT MAX(h2.recorded_at)
			FROM milestone_history h2
			WHERE h2.component_id = h.component_id
			  AND h2.milestone_name = h.milestone_name
			  AND h2.recorded_at <= ?
		  )
	`

	rows, err := s.db.QueryContext(ctx, stmt, projectID, cutoff, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	byComponent := make(map[int64]*storage.MilestoneSnapshot)
	var order []int64

	for rows.Next() {
		var componentID int64
		var name string
		var value float64
		if err := rows.Scan(&componentID, &name, &value); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		snap, ok := byComponent[componentID]
		if !ok {
			snap = &storage.MilestoneSnapshot{
				ComponentID: componentID,
				Milestones:  make(map[string]float64),
			}
			byComponent[componentID] = snap
			order = append(order, componentID)
		}
		snap.Milestones[name] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	snapshots := make([]storage.MilestoneSnapshot, 0, len(order))
	for _, id := range order {
		snapshots = append(snapshots, *byComponent[id])
	}

	return snapshots, nil
}

// GetWeldStateSnapshots returns each weld's countable state as of the cutoff,
// for weld count deltas. Welds created after the cutoff are absent and count
// as new welds.
func (s *Storage) GetWeldStateSnapshots(ctx context.Context, projectID int64, cutoff time.Time) ([]storage.WeldStateSnapshot, error) {
	const op = "storage.mysql.GetWeldStateSnapshots"

	stmt := `
		SELECT h.weld_id, h.fitup_done, h.weld_done, h.nde_performed, h.nde_accepted
		FROM field_weld_history h
		JOIN field_welds w ON w.id = h.weld_id
		WHERE w.project_id = ?
		  AND h.recorded_at <= ?
		  AND h.recorded_at = (
			SELECT MAX(h2.recorded_at)
			FROM field_weld_history h2
			WHERE h2.weld_id = h.weld_id AND h2.recorded_at <= ?
		  )
	`

	rows, err := s.db.QueryContext(ctx, stmt, projectID, cutoff, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var snapshots []storage.WeldStateSnapshot

	for rows.Next() {
		var snap storage.WeldStateSnapshot
		if err := rows.Scan(&snap.WeldID, &snap.FitupDone, &snap.WeldDone, &snap.NDEPerformed, &snap.NDEAccepted); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		snapshots = append(snapshots, snap)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return snapshots, nil
}
