package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	deltaget "pipetrak/http-server/delta/get"
	genexcel "pipetrak/http-server/generate-report/generate-excel"
	milestoneupdate "pipetrak/http-server/milestone/update"
	progressget "pipetrak/http-server/progress/get"
	templateget "pipetrak/http-server/template/get"
	templatesave "pipetrak/http-server/template/save"
	templateupdate "pipetrak/http-server/template/update"
	welderget "pipetrak/http-server/welder/get"
	"pipetrak/internal/config"
	"pipetrak/internal/middleware/auth"
	generate_excel "pipetrak/internal/service/generate-excel"
	"pipetrak/internal/service/progress"
	"pipetrak/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, progressService *progress.ProgressService, excelService *generate_excel.GenerateExcelService) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Progress and delta report tables
	router.Get("/api/reports/progress", progressget.GetProgressReport(log, progressService))
	router.Get("/api/reports/delta", deltaget.GetDeltaReport(log, progressService))
	router.Get("/api/reports/weld-delta", deltaget.GetWeldDeltaReport(log, progressService))
	router.Get("/api/reports/welders", welderget.GetWelderReport(log, progressService))

	// Milestone writes
	router.Post("/api/components/milestone", milestoneupdate.UpdateComponentMilestone(log, progressService))

	// Templates for the milestone editor
	router.Get("/api/templates", templateget.GetTemplate(log, storage))
	router.Get("/api/templates/active", templateget.GetActiveTemplates(log, storage))

	// Excel export
	router.Get("/api/report/excel", genexcel.GenerateReportExcel(log, excelService))

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Get("/templates", templateget.GetAllTemplatesAdmin(log, storage))
	adminRouter.Post("/template/new", templatesave.SaveTemplateAdmin(log, storage))
	adminRouter.Put("/template/update/{id}", templateupdate.UpdateTemplateAdmin(log, storage))

	router.Mount("/api/admin", adminRouter)

	return router
}
