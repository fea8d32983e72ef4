package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/email"
	"github.com/jwalitptl/booking-api/internal/handler"
	appointmentHandler "github.com/jwalitptl/booking-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/booking-api/internal/handler/auth"
	payerHandler "github.com/jwalitptl/booking-api/internal/handler/payer"
	"github.com/jwalitptl/booking-api/internal/lock"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/internal/router"
	appointmentService "github.com/jwalitptl/booking-api/internal/service/appointment"
	authService "github.com/jwalitptl/booking-api/internal/service/auth"
	"github.com/jwalitptl/booking-api/internal/service/notification"
	payerService "github.com/jwalitptl/booking-api/internal/service/payer"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/messaging/redis"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/security"
	"github.com/jwalitptl/booking-api/pkg/validator"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.Log)
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	// Redis backs the slot lock and the event broker; both degrade to no-ops without it
	var (
		broker messaging.Broker = messaging.NopBroker{}
		locker lock.Locker      = lock.NopLocker{}
	)
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis.ToClientConfig())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		broker = redis.NewRedisBroker(client)
		locker = lock.NewRedisSlotLocker(client, cfg.Redis.LockTTL)
	} else {
		log.Warn().Msg("redis disabled: slot locking and status events are off")
	}
	defer broker.Close()

	var sender email.Sender = email.NoopSender{}
	if cfg.SMTP.Enabled {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		})
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Monitoring.Namespace, reg)

	// Initialize repositories
	payerRepo := postgres.NewPayerRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	staffRepo := postgres.NewStaffUserRepository(db)

	// Initialize services
	validate := validator.New()
	payerSvc := payerService.NewService(payerRepo, validate)
	notifier := notification.NewService(sender, m)
	appointmentSvc := appointmentService.NewService(appointmentRepo, payerRepo, notifier, validate,
		appointmentService.WithLocker(locker),
		appointmentService.WithBroker(broker, cfg.Redis.EventChannel),
		appointmentService.WithMetrics(m),
	)
	authSvc := authService.NewService(staffRepo, security.NewBcryptHasher(bcrypt.DefaultCost),
		auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry()), validate)

	created, err := authSvc.EnsureStaff(ctx, staffSeeds(cfg.Staff))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create initial staff users")
	}
	if created > 0 {
		log.Info().Int("count", created).Msg("initial staff users created")
	}

	// Setup router
	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	routerConfig := router.RouterConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     corsConfig,
	}
	if cfg.Monitoring.PrometheusEnabled {
		routerConfig.Metrics = m
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = &middleware.RateLimiterConfig{
			RPS:   cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
		}
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		handler.NewHandler(db, reg),
		routerConfig,
		authHandler.NewHandler(authSvc),
		payerHandler.NewHandler(payerSvc),
		appointmentHandler.NewHandler(appointmentSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

func staffSeeds(staff []config.StaffConfig) []model.StaffSeed {
	seeds := make([]model.StaffSeed, 0, len(staff))
	for _, s := range staff {
		seeds = append(seeds, model.StaffSeed{
			Username: s.Username,
			Password: s.Password,
			Role:     model.StaffRole(s.Role),
		})
	}
	return seeds
}
