package progress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pipetrak/internal/report"
	"pipetrak/internal/storage"
)

// ErrRangePending means a custom date range is still missing one side; no
// computation runs until both dates are present.
var ErrRangePending = errors.New("custom date range incomplete")

type ProgressStorage interface {
	GetComponents(ctx context.Context, projectID int64) ([]storage.ComponentRow, error)
	GetActiveTemplates(ctx context.Context) ([]*storage.MilestoneTemplate, error)
	GetMilestoneSnapshots(ctx context.Context, projectID int64, cutoff time.Time) ([]storage.MilestoneSnapshot, error)
	GetFieldWelds(ctx context.Context, projectID int64) ([]storage.FieldWeldRow, error)
	GetWeldStateSnapshots(ctx context.Context, projectID int64, cutoff time.Time) ([]storage.WeldStateSnapshot, error)
	GetComponent(ctx context.Context, id int64) (*storage.ComponentRow, error)
	GetTemplate(ctx context.Context, componentType string, version int) (*storage.MilestoneTemplate, error)
	UpdateComponentMilestone(ctx context.Context, upd storage.MilestoneUpdate, percentAfter float64) error
}

type ProgressService struct {
	storage ProgressStorage
	now     func() time.Time
}

func NewProgressService(storage ProgressStorage) *ProgressService {
	return &ProgressService{storage: storage, now: time.Now}
}

// ProgressReportData is the row set handed to rendering and export
// collaborators.
type ProgressReportData struct {
	ReportID    string    `json:"report_id"`
	ProjectID   int64     `json:"project_id"`
	GeneratedAt time.Time `json:"generated_at"`
	*report.Report
}

type DeltaReportData struct {
	ReportID    string    `json:"report_id"`
	ProjectID   int64     `json:"project_id"`
	GeneratedAt time.Time `json:"generated_at"`
	*report.DeltaReport
}

type WeldDeltaReportData struct {
	ReportID    string    `json:"report_id"`
	ProjectID   int64     `json:"project_id"`
	GeneratedAt time.Time `json:"generated_at"`
	*report.WeldDeltaReport
}

type WelderReportData struct {
	ReportID    string    `json:"report_id"`
	ProjectID   int64     `json:"project_id"`
	GeneratedAt time.Time `json:"generated_at"`
	*report.WelderReport
}

// BuildProgressReport aggregates a project's components by dim and sorts the
// rows per cfg. The grand total stays outside the sorted slice.
func (s *ProgressService) BuildProgressReport(ctx context.Context, projectID int64, dim report.Dimension, cfg report.SortConfig) (*ProgressReportData, error) {
	const op = "service.progress.BuildProgressReport"

	components, templates, err := s.fetchComponents(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entities, err := resolveComponents(components, templates, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rep, err := report.Aggregate(entities, dim)
	if err != nil {
		return nil, err
	}
	report.SortRows(rep.Rows, cfg)

	return &ProgressReportData{
		ReportID:    uuid.NewString(),
		ProjectID:   projectID,
		GeneratedAt: s.now(),
		Report:      rep,
	}, nil
}

// BuildDeltaReport computes the earned-value change across the selected
// window. Pending custom ranges return ErrRangePending; a window nobody
// worked in returns report.ErrNoActivity. The end state is the current
// values only while the window runs up to now; a custom window ending in
// the past resolves it from history at the end cutoff, so activity after
// the window is never credited to it.
func (s *ProgressService) BuildDeltaReport(ctx context.Context, projectID int64, dim report.Dimension, rng report.DateRange, cfg report.SortConfig) (*DeltaReportData, error) {
	const op = "service.progress.BuildDeltaReport"

	now := s.now()
	windowStart, windowEnd, ok := rng.Window(now)
	if !ok {
		return nil, ErrRangePending
	}
	historical := windowEnd.Before(now)

	var (
		components []storage.ComponentRow
		templates  []*storage.MilestoneTemplate
		startSnaps []storage.MilestoneSnapshot
		endSnaps   []storage.MilestoneSnapshot
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		components, err = s.storage.GetComponents(gCtx, projectID)
		if err != nil {
			return fmt.Errorf("components: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		templates, err = s.storage.GetActiveTemplates(gCtx)
		if err != nil {
			return fmt.Errorf("templates: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		startSnaps, err = s.storage.GetMilestoneSnapshots(gCtx, projectID, windowStart)
		if err != nil {
			return fmt.Errorf("start snapshots: %w", err)
		}
		return nil
	})
	if historical {
		g.Go(func() error {
			var err error
			endSnaps, err = s.storage.GetMilestoneSnapshots(gCtx, projectID, windowEnd)
			if err != nil {
				return fmt.Errorf("end snapshots: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	index := indexTemplates(templates)

	// Components with no history before a past end cutoff resolve to zero
	// values and drop out as unmoved.
	var endValues map[int64]map[string]float64
	if historical {
		endValues = make(map[int64]map[string]float64, len(endSnaps))
		for _, snap := range endSnaps {
			endValues[snap.ComponentID] = snap.Milestones
		}
	}

	end, err := resolveComponents(components, templates, endValues)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Start-of-window categories: snapshot values against the current
	// template and current budget, so budgets stay current per the
	// delta contract.
	snapValues := make(map[int64]map[string]float64, len(startSnaps))
	for _, snap := range startSnaps {
		snapValues[snap.ComponentID] = snap.Milestones
	}

	start := make(map[string][]report.CategoryProgress)
	for _, c := range components {
		values, ok := snapValues[c.ID]
		if !ok {
			continue // no history before cutoff: new component, zero start
		}
		tmpl, ok := index[templateKey(c.ComponentType, c.TemplateVersion)]
		if !ok {
			return nil, fmt.Errorf("%s: no active template for %s v%d", op, c.ComponentType, c.TemplateVersion)
		}
		cats, _, err := report.ResolveProgress(*tmpl, values, c.MhBudget)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		start[strconv.FormatInt(c.ID, 10)] = cats
	}

	rep, err := report.DeltaAggregate(end, start, dim, rng)
	if err != nil {
		return nil, err
	}
	report.SortDeltaRows(rep.Rows, cfg)

	return &DeltaReportData{
		ReportID:    uuid.NewString(),
		ProjectID:   projectID,
		GeneratedAt: s.now(),
		DeltaReport: rep,
	}, nil
}

// BuildWeldDeltaReport computes count-based field-weld deltas for the window.
// Like BuildDeltaReport, a window ending in the past takes its end state from
// history at the end cutoff rather than the live rows.
func (s *ProgressService) BuildWeldDeltaReport(ctx context.Context, projectID int64, dim report.Dimension, rng report.DateRange) (*WeldDeltaReportData, error) {
	const op = "service.progress.BuildWeldDeltaReport"

	now := s.now()
	windowStart, windowEnd, ok := rng.Window(now)
	if !ok {
		return nil, ErrRangePending
	}
	historical := windowEnd.Before(now)

	var (
		welds      []storage.FieldWeldRow
		startSnaps []storage.WeldStateSnapshot
		endSnaps   []storage.WeldStateSnapshot
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		welds, err = s.storage.GetFieldWelds(gCtx, projectID)
		if err != nil {
			return fmt.Errorf("welds: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		startSnaps, err = s.storage.GetWeldStateSnapshots(gCtx, projectID, windowStart)
		if err != nil {
			return fmt.Errorf("weld snapshots: %w", err)
		}
		return nil
	})
	if historical {
		g.Go(func() error {
			var err error
			endSnaps, err = s.storage.GetWeldStateSnapshots(gCtx, projectID, windowEnd)
			if err != nil {
				return fmt.Errorf("weld end snapshots: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if historical {
		endState := make(map[int64]storage.WeldStateSnapshot, len(endSnaps))
		for _, snap := range endSnaps {
			endState[snap.WeldID] = snap
		}
		welds = weldsAt(welds, endState)
	}

	start := make(map[int64]storage.WeldStateSnapshot, len(startSnaps))
	for _, snap := range startSnaps {
		start[snap.WeldID] = snap
	}

	rep, err := report.WeldCountDeltas(welds, start, dim, rng)
	if err != nil {
		return nil, err
	}

	return &WeldDeltaReportData{
		ReportID:        uuid.NewString(),
		ProjectID:       projectID,
		GeneratedAt:     s.now(),
		WeldDeltaReport: rep,
	}, nil
}

// BuildWelderReport produces the tiered welder summary.
func (s *ProgressService) BuildWelderReport(ctx context.Context, projectID int64) (*WelderReportData, error) {
	welds, err := s.storage.GetFieldWelds(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("service.progress.BuildWelderReport: %w", err)
	}

	rep, err := report.WelderSummary(welds)
	if err != nil {
		return nil, err
	}

	return &WelderReportData{
		ReportID:     uuid.NewString(),
		ProjectID:    projectID,
		GeneratedAt:  s.now(),
		WelderReport: rep,
	}, nil
}

// UpdateMilestone validates a milestone write against the component's
// template, recomputes the overall percent, and persists both plus a history
// row in one transaction.
func (s *ProgressService) UpdateMilestone(ctx context.Context, upd storage.MilestoneUpdate) (float64, error) {
	const op = "service.progress.UpdateMilestone"

	component, err := s.storage.GetComponent(ctx, upd.ComponentID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tmpl, err := s.storage.GetTemplate(ctx, component.ComponentType, component.TemplateVersion)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	milestone, found := findMilestone(tmpl.Milestones, upd.MilestoneName)
	if !found {
		return 0, fmt.Errorf("%s: milestone %q not in template %s v%d", op, upd.MilestoneName, tmpl.ComponentType, tmpl.Version)
	}

	if milestone.IsPartial {
		if upd.Value < 0 || upd.Value > 100 {
			return 0, fmt.Errorf("%s: partial milestone %q takes 0-100, got %v", op, upd.MilestoneName, upd.Value)
		}
	} else if upd.Value != 0 && upd.Value != 1 {
		return 0, fmt.Errorf("%s: discrete milestone %q takes 0 or 1, got %v", op, upd.MilestoneName, upd.Value)
	}
	if milestone.RequiresWelder && upd.Value > 0 && upd.WelderID == nil {
		return 0, fmt.Errorf("%s: milestone %q requires a welder", op, upd.MilestoneName)
	}

	values := make(map[string]float64, len(component.Milestones)+1)
	for name, v := range component.Milestones {
		values[name] = v
	}
	values[upd.MilestoneName] = upd.Value

	_, percentAfter, err := report.ResolveProgress(*tmpl, values, component.MhBudget)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdateComponentMilestone(ctx, upd, percentAfter); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return percentAfter, nil
}

// fetchComponents pulls components and active templates in parallel.
func (s *ProgressService) fetchComponents(ctx context.Context, projectID int64) ([]storage.ComponentRow, []*storage.MilestoneTemplate, error) {
	var (
		components []storage.ComponentRow
		templates  []*storage.MilestoneTemplate
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		components, err = s.storage.GetComponents(gCtx, projectID)
		if err != nil {
			return fmt.Errorf("components: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		templates, err = s.storage.GetActiveTemplates(gCtx)
		if err != nil {
			return fmt.Errorf("templates: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return components, templates, nil
}

func templateKey(componentType string, version int) string {
	return componentType + "/" + strconv.Itoa(version)
}

func indexTemplates(templates []*storage.MilestoneTemplate) map[string]*storage.MilestoneTemplate {
	index := make(map[string]*storage.MilestoneTemplate, len(templates))
	for _, t := range templates {
		index[templateKey(t.ComponentType, t.Version)] = t
	}
	return index
}

// weldsAt overlays snapshot state onto the live weld rows so the counts
// reflect the window end instead of now. Grouping keys and identity stay
// from the live row; welds with no history before the cutoff did not exist
// at the window end and are dropped.
func weldsAt(welds []storage.FieldWeldRow, state map[int64]storage.WeldStateSnapshot) []storage.FieldWeldRow {
	out := make([]storage.FieldWeldRow, 0, len(welds))
	for _, w := range welds {
		snap, ok := state[w.ID]
		if !ok {
			continue
		}
		w.FitupDone = snap.FitupDone
		w.WeldDone = snap.WeldDone
		w.NDEPerformed = snap.NDEPerformed
		if snap.NDEAccepted {
			accept := "accept"
			w.NDEResult = &accept
		} else {
			w.NDEResult = nil
		}
		out = append(out, w)
	}
	return out
}

func findMilestone(milestones []storage.Milestone, name string) (storage.Milestone, bool) {
	for _, m := range milestones {
		if m.Name == name {
			return m, true
		}
	}
	return storage.Milestone{}, false
}

// resolveComponents turns component rows into aggregation entities. values
// overrides the current milestone values per component id when non-nil
// (used for snapshot resolution).
func resolveComponents(components []storage.ComponentRow, templates []*storage.MilestoneTemplate, values map[int64]map[string]float64) ([]report.Entity, error) {
	index := indexTemplates(templates)

	entities := make([]report.Entity, 0, len(components))
	for _, c := range components {
		tmpl, ok := index[templateKey(c.ComponentType, c.TemplateVersion)]
		if !ok {
			return nil, fmt.Errorf("no active template for %s v%d", c.ComponentType, c.TemplateVersion)
		}

		milestoneValues := c.Milestones
		if values != nil {
			milestoneValues = values[c.ID]
		}

		cats, weightPct, err := report.ResolveProgress(*tmpl, milestoneValues, c.MhBudget)
		if err != nil {
			return nil, err
		}

		entities = append(entities, report.Entity{
			ID:          strconv.FormatInt(c.ID, 10),
			Area:        c.Area,
			System:      c.System,
			TestPackage: c.TestPackage,
			MhBudget:    c.MhBudget,
			WeightPct:   weightPct,
			Categories:  cats,
		})
	}

	return entities, nil
}
