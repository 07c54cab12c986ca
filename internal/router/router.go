package router

import (
	"github.com/gin-gonic/gin"
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
	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/pkg/logger"
	"github.com/jwalitptl/dentalcare/pkg/metrics"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health     *health.Handler
	Auth       *authhandler.Handler
	Users      *userhandler.Handler
	Patients   *patienthandler.Handler
	Incidents  *incidenthandler.Handler
	Stats      *statshandler.Handler
	Me         *me.Handler
	Prometheus *promhandler.Handler
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	AllowOrigins     []string
	MaxUploadBytes   int64
	MetricsPath      string
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	config   RouterConfig
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, m *metrics.Metrics, log *logger.Logger, config RouterConfig) *Router {
	if log == nil {
		log = logger.Nop()
	}
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(
		middleware.CORS(config.AllowOrigins),
		middleware.SecureHeaders(),
	)
	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		config:   config,
	}
}

func (r *Router) Setup() {
	if r.handlers.Prometheus != nil {
		path := r.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, r.handlers.Prometheus.Handler())
	}

	api := r.engine.Group("/api/v1")
	r.handlers.Health.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.handlers.Auth.RegisterRoutes(api, protected)

	admin := protected.Group("")
	admin.Use(r.auth.RequireRole(model.RoleAdmin))
	r.handlers.Users.RegisterRoutes(admin)
	r.handlers.Patients.RegisterRoutes(admin)
	r.handlers.Stats.RegisterRoutes(admin)

	var upload []gin.HandlerFunc
	if r.config.MaxUploadBytes > 0 {
		upload = append(upload, middleware.SizeLimit(r.config.MaxUploadBytes))
	}
	r.handlers.Incidents.RegisterRoutes(admin, upload...)

	patient := protected.Group("")
	patient.Use(r.auth.RequireRole(model.RolePatient))
	r.handlers.Me.RegisterRoutes(patient)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
