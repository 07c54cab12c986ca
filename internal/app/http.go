package app

import (
	"golang.org/x/time/rate"

	authhandler "github.com/jwalitptl/dentalcare/internal/handler/auth"
	"github.com/jwalitptl/dentalcare/internal/handler/health"
	incidenthandler "github.com/jwalitptl/dentalcare/internal/handler/incident"
	"github.com/jwalitptl/dentalcare/internal/handler/me"
	patienthandler "github.com/jwalitptl/dentalcare/internal/handler/patient"
	promhandler "github.com/jwalitptl/dentalcare/internal/handler/prometheus"
	statshandler "github.com/jwalitptl/dentalcare/internal/handler/stats"
	userhandler "github.com/jwalitptl/dentalcare/internal/handler/user"
	"github.com/jwalitptl/dentalcare/internal/middleware"
	"github.com/jwalitptl/dentalcare/internal/router"
)

// Router builds the HTTP API over the app's services.
func (a *App) Router() *router.Router {
	cfg := a.Config
	handlers := router.Handlers{
		Health:    health.NewHandler(a.Storage),
		Auth:      authhandler.NewHandler(a.Auth),
		Users:     userhandler.NewHandler(a.Auth),
		Patients:  patienthandler.NewHandler(a.Patients, a.Stats),
		Incidents: incidenthandler.NewHandler(a.Incidents),
		Stats:     statshandler.NewHandler(a.Stats),
		Me:        me.NewHandler(a.Patients, a.Stats),
	}
	if cfg.Metrics.Enabled {
		handlers.Prometheus = promhandler.New(a.Registry)
	}

	r := router.NewRouter(middleware.NewAuthMiddleware(a.Auth), handlers, a.Metrics, a.Logger, router.RouterConfig{
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		AllowOrigins:     cfg.Server.AllowOrigins,
		MaxUploadBytes:   cfg.Server.MaxUploadBytes,
		MetricsPath:      cfg.Metrics.Path,
	})
	r.Setup()
	return r
}
