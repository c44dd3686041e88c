// Package main is the entrypoint for the Recipebox API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/recipebox/recipebox/internal/cache"
	"github.com/recipebox/recipebox/internal/config"
	"github.com/recipebox/recipebox/internal/handler"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/middleware"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/server"
	"github.com/recipebox/recipebox/internal/service"
	"github.com/recipebox/recipebox/internal/storage"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database, waiting for it to come up so the API can start
	// alongside Postgres in compose setups.
	repo, err := repository.NewWithWait(ctx, cfg.DatabaseURL, cfg.DBConnectAttempts, cfg.DBConnectDelay)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Apply pending migrations
	if cfg.DBAutoMigrate {
		if err := repository.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			logger.Error(
				"failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Initialize cache, with the same startup wait as the database
	cacheClient, err := cache.NewWithWait(ctx, cfg.RedisURL, cfg.RedisConnectAttempts, cfg.RedisConnectDelay)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Initialize media storage
	store, diskStore, err := initStorage(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("storage ready", "driver", cfg.StorageDriver)

	// Initialize metrics
	var metricsRecorder metrics.Recorder
	var prom *metrics.PrometheusRecorder
	if cfg.MetricsEnabled {
		prom = metrics.NewPrometheus()
		metricsRecorder = prom
	} else {
		metricsRecorder = metrics.NewNoop()
	}

	// Initialize services
	userService := service.NewUserService(repo, cacheClient, cfg.TokenTTL, metricsRecorder)
	recipeService := service.NewRecipeService(repo, store, metricsRecorder)
	labelService := service.NewLabelService(repo, metricsRecorder)

	// Initialize handlers
	h := handler.New(version)
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	userHandler := handler.NewUserHandler(userService, logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, logger)
	tagHandler := handler.NewLabelHandler(labelService, model.LabelKindTag, logger)
	ingredientHandler := handler.NewLabelHandler(labelService, model.LabelKindIngredient, logger)

	// The media route only exists for disk storage; S3 serves files itself.
	var mediaHandler *handler.MediaHandler
	if diskStore != nil {
		mediaHandler = handler.NewMediaHandler(diskStore, logger)
	}

	// Setup router
	r := setupRouter(
		h,
		healthHandler,
		userHandler,
		recipeHandler,
		tagHandler,
		ingredientHandler,
		mediaHandler,
		prom,
		repo,
		cacheClient,
		cfg,
		logger,
	)

	// Create and run server
	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initStorage builds the configured storage backend. The *Disk return is
// non-nil only for the disk driver, which needs the media route mounted.
func initStorage(ctx context.Context, cfg *config.Config) (storage.Storage, *storage.Disk, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverDisk:
		disk, err := storage.NewDisk(cfg.MediaRoot, cfg.BaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init disk storage: %w", err)
		}
		return disk, disk, nil
	case config.StorageDriverS3:
		s3Store, err := storage.NewS3(ctx, storage.S3Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UsePathStyle:    cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init s3 storage: %w", err)
		}
		return s3Store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	userHandler *handler.UserHandler,
	recipeHandler *handler.RecipeHandler,
	tagHandler *handler.LabelHandler,
	ingredientHandler *handler.LabelHandler,
	mediaHandler *handler.MediaHandler,
	prom *metrics.PrometheusRecorder,
	repo *repository.Repository,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))

	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Root)

	// Prometheus exposition
	if prom != nil {
		r.Method(http.MethodGet, "/metrics", prom.Handler())
	}

	// Uploaded images (disk storage only)
	if mediaHandler != nil {
		r.Get("/media/*", mediaHandler.Serve)
	}

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:     logger,
		Repository: repo,
		Cache:      cacheClient,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:            logger,
		Cache:             cacheClient,
		APIEnabled:        cfg.RateLimitAPIEnabled,
		RequestsPerMinute: cfg.RateLimitAPIRPM,
		Burst:             cfg.RateLimitAPIBurst,
		PublicEnabled:     cfg.RateLimitPublicEnabled,
		PublicRPS:         cfg.RateLimitPublicRPS,
		PublicBurst:       cfg.RateLimitPublicBurst,
	}

	jsonBody := middleware.MaxBodySize(cfg.MaxRequestBodySize)
	uploadBody := middleware.MaxBodySize(cfg.MaxUploadSize)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (signup and login, rate limited per IP)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitPublic(rateLimitCfg))
			r.Use(jsonBody)

			r.Post("/user/create", userHandler.Create)
			r.Post("/user/token", userHandler.Token)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitAPI(rateLimitCfg))

			// Image uploads carry multipart payloads larger than the
			// JSON body cap, so they get their own limit.
			r.With(uploadBody).Post("/recipes/{id:[0-9]+}/image", recipeHandler.UploadImage)

			r.Group(func(r chi.Router) {
				r.Use(jsonBody)

				r.Route("/user/me", func(r chi.Router) {
					r.Get("/", userHandler.Me)
					r.Patch("/", userHandler.UpdateMe)
					r.Put("/", userHandler.UpdateMe)
				})
				r.Delete("/user/token", userHandler.RevokeToken)

				r.Route("/recipes", func(r chi.Router) {
					r.Get("/", recipeHandler.List)
					r.Post("/", recipeHandler.Create)
					r.Route("/{id:[0-9]+}", func(r chi.Router) {
						r.Get("/", recipeHandler.Get)
						r.Put("/", recipeHandler.UpdateFull)
						r.Patch("/", recipeHandler.Update)
						r.Delete("/", recipeHandler.Delete)
					})
				})

				r.Route("/tags", labelRoutes(tagHandler))
				r.Route("/ingredients", labelRoutes(ingredientHandler))
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

// labelRoutes mounts the shared tag/ingredient route set for one handler.
func labelRoutes(h *handler.LabelHandler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
		})
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
