package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"pipetrak/internal/report"
	"pipetrak/internal/service/progress"
)

type DeltaProvider interface {
	BuildDeltaReport(ctx context.Context, projectID int64, dim report.Dimension, rng report.DateRange, cfg report.SortConfig) (*progress.DeltaReportData, error)
	BuildWeldDeltaReport(ctx context.Context, projectID int64, dim report.Dimension, rng report.DateRange) (*progress.WeldDeltaReportData, error)
}

type StateResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Reset   string `json:"reset,omitempty"`
}

// ParseDateRange reads preset/start/end query params. Custom dates use the
// 2006-01-02 form; a half-filled custom range is not an error, it just never
// resolves to a window.
func ParseDateRange(r *http.Request) (report.DateRange, error) {
	preset := report.Preset(r.URL.Query().Get("preset"))
	if preset == "" {
		preset = report.PresetAllTime
	}
	if !preset.Valid() {
		return report.DateRange{}, errors.New("invalid preset")
	}

	rng := report.DateRange{Preset: preset}
	if preset != report.PresetCustom {
		return rng, nil
	}

	if startStr := r.URL.Query().Get("start"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return report.DateRange{}, errors.New("invalid start date")
		}
		rng.Start = &start
	}
	if endStr := r.URL.Query().Get("end"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return report.DateRange{}, errors.New("invalid end date")
		}
		rng.End = &end
	}

	return rng, nil
}

// GetDeltaReport serves GET /api/reports/delta. A window with no activity is
// a valid state with a reset-to-all-time hint, not an error.
func GetDeltaReport(log *slog.Logger, svc DeltaProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.delta.GetDeltaReport"

		projectID, err := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid project_id", http.StatusBadRequest)
			return
		}

		dim := report.Dimension(r.URL.Query().Get("dimension"))
		if dim == "" {
			dim = report.DimensionArea
		}
		if !dim.Valid() || dim == report.DimensionWelder {
			http.Error(w, "invalid dimension", http.StatusBadRequest)
			return
		}

		rng, err := ParseDateRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !rng.DeltaMode() {
			http.Error(w, "all_time has no delta; use the progress report", http.StatusBadRequest)
			return
		}

		cfg := report.SortConfig{
			Column:     r.URL.Query().Get("sort"),
			Descending: r.URL.Query().Get("dir") == "desc",
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		data, err := svc.BuildDeltaReport(ctx, projectID, dim, rng, cfg)
		if err != nil {
			switch {
			case errors.Is(err, progress.ErrRangePending):
				render.JSON(w, r, StateResponse{Status: "pending", Message: "select both start and end dates"})
			case errors.Is(err, report.ErrNoActivity):
				render.JSON(w, r, StateResponse{Status: "no_activity", Message: "no activity in this period", Reset: "all_time"})
			case errors.Is(err, report.ErrNoData):
				render.JSON(w, r, StateResponse{Status: "empty", Message: "no components found"})
			default:
				log.Error("delta report failed", slog.String("op", op), slog.String("error", err.Error()))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, r, data)
	}
}

// GetWeldDeltaReport serves GET /api/reports/weld-delta: count-based weld
// deltas for the window.
func GetWeldDeltaReport(log *slog.Logger, svc DeltaProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.delta.GetWeldDeltaReport"

		projectID, err := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid project_id", http.StatusBadRequest)
			return
		}

		dim := report.Dimension(r.URL.Query().Get("dimension"))
		if dim == "" {
			dim = report.DimensionWelder
		}
		if !dim.Valid() {
			http.Error(w, "invalid dimension", http.StatusBadRequest)
			return
		}

		rng, err := ParseDateRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !rng.DeltaMode() {
			http.Error(w, "all_time has no delta; pick a bounded preset", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		data, err := svc.BuildWeldDeltaReport(ctx, projectID, dim, rng)
		if err != nil {
			switch {
			case errors.Is(err, progress.ErrRangePending):
				render.JSON(w, r, StateResponse{Status: "pending", Message: "select both start and end dates"})
			case errors.Is(err, report.ErrNoActivity):
				render.JSON(w, r, StateResponse{Status: "no_activity", Message: "no weld activity in this period", Reset: "all_time"})
			default:
				log.Error("weld delta report failed", slog.String("op", op), slog.String("error", err.Error()))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, r, data)
	}
}
