package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gwi.com/chatmood/internal/api/middleware"
)

func NewRouter(apiHandler *APIHandler, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Metrics) // First, so every request is counted
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)

	r.Handle("/metrics", promhttp.Handler())

	// Dashboard
	r.Get("/", apiHandler.IndexHandler)
	r.Post("/analyze", apiHandler.AnalyzeUploadHandler)
	r.Get("/analyses/{analysisID}", apiHandler.ShowAnalysisHandler)
	r.Get("/analyses/{analysisID}/chart.png", apiHandler.ChartHandler)

	// All JSON routes live under /api
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/health", apiHandler.HealthHandler)
		r.Get("/labels", apiHandler.LabelsHandler)

		r.Post("/analyses", apiHandler.CreateAnalysisHandler)
		r.Get("/analyses", apiHandler.ListAnalysesHandler)
		r.Get("/analyses/{analysisID}", apiHandler.GetAnalysisHandler)
		r.Delete("/analyses/{analysisID}", apiHandler.DeleteAnalysisHandler)
	})

	return r
}
