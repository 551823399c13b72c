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

type ReportProvider interface {
	BuildProgressReport(ctx context.Context, projectID int64, dim report.Dimension, cfg report.SortConfig) (*progress.ProgressReportData, error)
}

type EmptyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// GetProgressReport serves GET /api/reports/progress.
// Query: project_id, dimension (area|system|test_package), sort, dir.
func GetProgressReport(log *slog.Logger, svc ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.progress.GetProgressReport"

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

		cfg := report.SortConfig{
			Column:     r.URL.Query().Get("sort"),
			Descending: r.URL.Query().Get("dir") == "desc",
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		data, err := svc.BuildProgressReport(ctx, projectID, dim, cfg)
		if err != nil {
			if errors.Is(err, report.ErrNoData) {
				render.JSON(w, r, EmptyResponse{Status: "empty", Message: "no components found"})
				return
			}
			log.Error("progress report failed", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, data)
	}
}
