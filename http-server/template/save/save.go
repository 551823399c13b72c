package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"pipetrak/internal/report"
	"pipetrak/internal/storage"
)

type TemplateCreator interface {
	SaveTemplate(ctx context.Context, tmpl storage.MilestoneTemplate) (int64, error)
}

// Request is the admin template payload. Field-level checks run through
// validator; the weight-sum and order invariants are checked separately since
// they span milestones.
type Request struct {
	ComponentType string              `json:"component_type" validate:"required"`
	Version       int                 `json:"version" validate:"required,min=1"`
	WorkflowType  string              `json:"workflow_type" validate:"required,oneof=discrete quantity hybrid"`
	Milestones    []storage.Milestone `json:"milestones_config" validate:"required,min=1,dive"`
	IsActive      bool                `json:"is_active"`
}

type Response struct {
	TemplateID int64  `json:"template_id,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

var validate = validator.New()

// SaveTemplateAdmin serves POST /api/admin/template/new. Invalid templates
// are rejected here, at the data-entry boundary, so the report engine can
// assume weights sum to 100.
func SaveTemplateAdmin(log *slog.Logger, creator TemplateCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.SaveTemplateAdmin"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		tmpl := storage.MilestoneTemplate{
			ComponentType: req.ComponentType,
			Version:       req.Version,
			WorkflowType:  req.WorkflowType,
			Milestones:    req.Milestones,
			IsActive:      req.IsActive,
		}

		if err := report.ValidateTemplate(tmpl); err != nil {
			if errors.Is(err, report.ErrInvalidTemplate) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, Response{Status: "rejected", Error: err.Error()})
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := creator.SaveTemplate(ctx, tmpl)
		if err != nil {
			log.Error("template save failed", slog.String("op", op), slog.String("error", err.Error()))
			render.JSON(w, r, Response{Error: "could not save template"})
			return
		}

		log.Info("template saved",
			slog.String("component_type", req.ComponentType),
			slog.Int("version", req.Version),
			slog.Int64("id", id))

		render.JSON(w, r, Response{TemplateID: id, Status: "ok"})
	}
}
