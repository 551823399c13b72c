package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"pipetrak/internal/storage"
)

type MilestoneUpdater interface {
	UpdateMilestone(ctx context.Context, upd storage.MilestoneUpdate) (float64, error)
}

type Response struct {
	ComponentID     int64   `json:"component_id"`
	PercentComplete float64 `json:"percent_complete"`
	Status          string  `json:"status"`
	Error           string  `json:"error,omitempty"`
}

// UpdateComponentMilestone serves POST /api/components/milestone: one
// milestone value write plus the recomputed overall percent.
func UpdateComponentMilestone(log *slog.Logger, svc MilestoneUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.milestone.UpdateComponentMilestone"

		var req storage.MilestoneUpdate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "invalid data", http.StatusBadRequest)
			return
		}

		if req.ComponentID == 0 || req.MilestoneName == "" {
			http.Error(w, "component_id and milestone_name are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		percent, err := svc.UpdateMilestone(ctx, req)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, "component not found", http.StatusNotFound)
				return
			}
			log.Error("milestone update failed", slog.String("op", op), slog.String("error", err.Error()))
			render.JSON(w, r, Response{ComponentID: req.ComponentID, Error: "could not update milestone"})
			return
		}

		log.Info("milestone updated",
			slog.Int64("component_id", req.ComponentID),
			slog.String("milestone", req.MilestoneName),
			slog.Float64("percent_complete", percent))

		render.JSON(w, r, Response{
			ComponentID:     req.ComponentID,
			PercentComplete: percent,
			Status:          "ok",
		})
	}
}
