package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// Handler mounts its routes on the public group and the staff-only group
type Handler interface {
	RegisterRoutes(public, staff *gin.RouterGroup)
}

type RouterConfig struct {
	RequestTimeout time.Duration
	CORSConfig     middleware.CORSConfig
	// RateLimit is applied to every route when set
	RateLimit *middleware.RateLimiterConfig
	Metrics   *metrics.Metrics
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	h        *handler.Handler
	handlers []Handler
	metrics  *metrics.Metrics
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	h *handler.Handler,
	config RouterConfig,
	handlers ...Handler,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		h:        h,
		handlers: handlers,
		metrics:  config.Metrics,
	}

	// Core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
		middleware.CORS(config.CORSConfig),
	)
	if config.Metrics != nil {
		engine.Use(middleware.Metrics(config.Metrics))
	}

	if config.RateLimit != nil {
		rateLimiter := middleware.NewRateLimiter(*config.RateLimit)
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)
	if r.metrics != nil {
		r.engine.GET("/metrics", r.h.MetricsHandler)
	}

	// Public routes serve the patient booking page
	public := api.Group("")

	// Staff routes need a session token
	staff := api.Group("")
	staff.Use(r.auth.Authenticate())

	for _, h := range r.handlers {
		h.RegisterRoutes(public, staff)
	}
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
