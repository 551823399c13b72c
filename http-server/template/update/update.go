package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"pipetrak/internal/report"
	"pipetrak/internal/storage"
)

type TemplateUpdater interface {
	UpdateTemplate(ctx context.Context, id int64, tmpl storage.MilestoneTemplate) error
}

// UpdateTemplateAdmin serves PUT /api/admin/template/update/{id}, with the
// same invariant checks as template creation.
func UpdateTemplateAdmin(log *slog.Logger, updater TemplateUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.UpdateTemplateAdmin"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		var tmpl storage.MilestoneTemplate
		if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		if err := report.ValidateTemplate(tmpl); err != nil {
			if errors.Is(err, report.ErrInvalidTemplate) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, map[string]string{"status": "rejected", "error": err.Error()})
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := updater.UpdateTemplate(ctx, id, tmpl); err != nil {
			log.Error("template update failed", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "could not update template", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]any{"status": "ok", "template_id": id})
	}
}
