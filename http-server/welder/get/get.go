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

type WelderProvider interface {
	BuildWelderReport(ctx context.Context, projectID int64) (*progress.WelderReportData, error)
}

type EmptyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// GetWelderReport serves GET /api/reports/welders: the tiered X-ray summary.
func GetWelderReport(log *slog.Logger, svc WelderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.welder.GetWelderReport"

		projectID, err := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid project_id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		data, err := svc.BuildWelderReport(ctx, projectID)
		if err != nil {
			if errors.Is(err, report.ErrNoData) {
				render.JSON(w, r, EmptyResponse{Status: "empty", Message: "no welds found"})
				return
			}
			log.Error("welder report failed", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, data)
	}
}
