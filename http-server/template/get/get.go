package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"

	"pipetrak/internal/storage"
)

type TemplateProvider interface {
	GetTemplate(ctx context.Context, componentType string, version int) (*storage.MilestoneTemplate, error)
	GetActiveTemplates(ctx context.Context) ([]*storage.MilestoneTemplate, error)
	GetAllTemplatesAdmin(ctx context.Context) ([]*storage.TemplateAdmin, error)
}

// GetTemplate serves GET /api/templates?component_type=...&version=N.
func GetTemplate(log *slog.Logger, provider TemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.GetTemplate"

		componentType := r.URL.Query().Get("component_type")
		if componentType == "" {
			http.Error(w, "component_type is required", http.StatusBadRequest)
			return
		}

		version, err := strconv.Atoi(r.URL.Query().Get("version"))
		if err != nil {
			http.Error(w, "invalid version", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		tmpl, err := provider.GetTemplate(ctx, componentType, version)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, "template not found", http.StatusNotFound)
				return
			}
			log.Error("template fetch failed", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, tmpl)
	}
}

// GetActiveTemplates serves GET /api/templates/active.
func GetActiveTemplates(log *slog.Logger, provider TemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.GetActiveTemplates"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		templates, err := provider.GetActiveTemplates(ctx)
		if err != nil {
			log.Error("templates fetch failed", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, templates)
	}
}

// GetAllTemplatesAdmin serves the admin list with raw milestone JSON.
func GetAllTemplatesAdmin(log *slog.Logger, provider TemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.GetAllTemplatesAdmin"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		templates, err := provider.GetAllTemplatesAdmin(ctx)
		if err != nil {
			log.Error("admin templates fetch failed", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, templates)
	}
}
