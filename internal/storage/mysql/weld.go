package mysql

import (
	"context"
	"fmt"

	"pipetrak/internal/storage"
)

func (s *Storage) GetFieldWelds(ctx context.Context, projectID int64) ([]storage.FieldWeldRow, error) {
	const op = "storage.mysql.GetFieldWelds"

	stmt := `
		SELECT w.id, w.project_id, w.weld_number, w.area, w.system, w.test_package,
		       w.welder_id, wd.name, w.xray_percent, w.fitup_done, w.weld_done,
		       w.nde_performed, w.nde_result, w.mh_budget, w.date_welded, w.created_at
		FROM field_welds w
		LEFT JOIN welders wd ON wd.id = w.welder_id
		WHERE w.project_id = ?
		ORDER BY w.weld_number
	`

	rows, err := s.db.QueryContext(ctx, stmt, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var welds []storage.FieldWeldRow

	for rows.Next() {
		var w storage.FieldWeldRow
		err := rows.Scan(&w.ID, &w.ProjectID, &w.WeldNumber, &w.Area, &w.System, &w.TestPackage,
			&w.WelderID, &w.WelderName, &w.XrayPercent, &w.FitupDone, &w.WeldDone,
			&w.NDEPerformed, &w.NDEResult, &w.MhBudget, &w.DateWelded, &w.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		welds = append(welds, w)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return welds, nil
}

func (s *Storage) GetWelders(ctx context.Context, projectID int64) ([]storage.Welder, error) {
	const op = "storage.mysql.GetWelders"

	stmt := `
		SELECT DISTINCT wd.id, wd.stencil, wd.name
		FROM welders wd
		JOIN field_welds w ON w.welder_id = wd.id
		WHERE w.project_id = ?
		ORDER BY wd.name
	`

	rows, err := s.db.QueryContext(ctx, stmt, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var welders []storage.Welder

	for rows.Next() {
		var w storage.Welder
		if err := rows.Scan(&w.ID, &w.Stencil, &w.Name); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		welders = append(welders, w)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return welders, nil
}
