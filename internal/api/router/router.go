package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/paulgroup/leadbot/internal/http/middleware"
	"github.com/paulgroup/leadbot/internal/leads"
	"github.com/paulgroup/leadbot/internal/messaging"
	"github.com/paulgroup/leadbot/internal/training"
	"github.com/paulgroup/leadbot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger           *logging.Logger
	MessagingHandler *messaging.Handler
	LeadsHandler     *leads.Handler
	TrainingHandler  *training.Handler
	AdminAuthSecret  string
	MetricsHandler   http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.MessagingHandler.HealthCheck)
		public.Post("/sms-webhook", cfg.MessagingHandler.SMSWebhook)
		public.Post("/incoming-lead", cfg.MessagingHandler.IncomingLead)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin endpoints behind JWT auth
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

		if cfg.LeadsHandler != nil {
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
			admin.Get("/leads/{phone}", cfg.LeadsHandler.GetLead)
		}
		if cfg.TrainingHandler != nil {
			admin.Post("/dataset", cfg.TrainingHandler.UploadDataset)
			admin.Get("/dataset/stats", cfg.TrainingHandler.DatasetStats)
			admin.Post("/dataset/test-match", cfg.TrainingHandler.TestMatch)
		}
	})

	return r
}
