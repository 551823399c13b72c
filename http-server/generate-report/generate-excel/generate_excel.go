package generate_excel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	deltaget "pipetrak/http-server/delta/get"
	"pipetrak/internal/report"
	"pipetrak/internal/service/progress"
)

type ExcelGenerator interface {
	GenerateProgressExcel(ctx context.Context, projectID int64, dim report.Dimension, cfg report.SortConfig) ([]byte, error)
	GenerateDeltaExcel(ctx context.Context, projectID int64, dim report.Dimension, rng report.DateRange, cfg report.SortConfig) ([]byte, error)
}

// GenerateReportExcel serves GET /api/report/excel. A non-all_time preset
// switches the export to the delta workbook.
func GenerateReportExcel(log *slog.Logger, gen ExcelGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GenerateReportExcel"

		projectID, err := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid project_id", http.StatusBadRequest)
			return
		}

		dim := report.Dimension(r.URL.Query().Get("dimension"))
		if dim == "" {
			dim = report.DimensionArea
		}
		// Workbooks cover components; the welder summary has no export.
		if !dim.Valid() || dim == report.DimensionWelder {
			http.Error(w, "invalid dimension", http.StatusBadRequest)
			return
		}

		rng, err := deltaget.ParseDateRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		cfg := report.SortConfig{
			Column:     r.URL.Query().Get("sort"),
			Descending: r.URL.Query().Get("dir") == "desc",
		}

		// Workbook generation gets a longer budget than plain JSON reads.
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		var data []byte
		if rng.DeltaMode() {
			data, err = gen.GenerateDeltaExcel(ctx, projectID, dim, rng, cfg)
		} else {
			data, err = gen.GenerateProgressExcel(ctx, projectID, dim, cfg)
		}
		if err != nil {
			switch {
			case errors.Is(err, report.ErrNoData):
				render.JSON(w, r, deltaget.StateResponse{Status: "empty", Message: "no components found"})
			case errors.Is(err, report.ErrNoActivity):
				render.JSON(w, r, deltaget.StateResponse{Status: "no_activity", Message: "no activity in this period", Reset: "all_time"})
			case errors.Is(err, progress.ErrRangePending):
				render.JSON(w, r, deltaget.StateResponse{Status: "pending", Message: "select both start and end dates"})
			default:
				log.Error("excel generation failed", slog.String("op", op), slog.String("error", err.Error()))
				http.Error(w, "could not generate report", http.StatusInternalServerError)
			}
			return
		}

		filename := fmt.Sprintf("pipetrak_%s_%s.xlsx", dim, time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))

		if _, err := w.Write(data); err != nil {
			log.Error("excel write failed", slog.String("op", op), slog.String("error", err.Error()))
		}
	}
}
