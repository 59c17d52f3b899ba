package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"eco-cycle-game/config"
	"eco-cycle-game/handlers"
	"eco-cycle-game/logger"
	"eco-cycle-game/middleware"
	"eco-cycle-game/models"
	"eco-cycle-game/repositories"
	"eco-cycle-game/services"
	"eco-cycle-game/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Console-only until the configured level and file are known.
	_ = logger.Init(logger.Options{})

	cfg, foundDotEnv, err := config.Load()
	if err != nil {
		logger.Log.Fatalw("invalid configuration", "error", err)
	}

	if err := utils.EnsureParentDir(cfg.LogFile); err != nil {
		logger.Log.Fatalw("failed to create log directory", "error", err)
	}
	if err := logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		logger.Log.Fatalw("failed to initialise logger", "error", err)
	}
	defer logger.Sync()
	if !foundDotEnv {
		logger.Log.Info("⚠️  No .env file found, reading environment variables directly")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repositories.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalw("failed to open database", "error", err)
	}
	defer repo.Close()

	catalog := services.DefaultCatalog()
	if cfg.Catalog.Enabled() {
		catalog = withRemoteCatalog(ctx, cfg.Catalog, catalog)
	}
	if err := services.SeedCatalog(ctx, repo, catalog); err != nil {
		logger.Log.Fatalw("failed to seed catalog", "error", err)
	}

	catalogService := services.NewCatalogService(repo)
	if err := catalogService.Refresh(ctx); err != nil {
		logger.Log.Fatalw("failed to load catalog", "error", err)
	}
	sched, err := catalogService.StartRefreshScheduler(ctx, cfg.CatalogRefreshInterval)
	if err != nil {
		logger.Log.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Shutdown()

	session := services.NewSessionService(repo, catalogService)
	app := newApp(cfg, session)

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			logger.Log.Errorw("Server error", "error", err)
			stop()
		}
	}()

	logger.Log.Infof("✅ Server running on http://localhost%s", cfg.Addr())
	logger.Log.Infof("✅ CORS configured for origins: %s", strings.Join(cfg.AllowedOrigins, ","))
	if cfg.ServiceToken != "" {
		logger.Log.Info("✅ Service token required on all routes except /api/health")
	}

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Log.Errorw("graceful shutdown failed", "error", err)
	}
}

func newApp(cfg config.Config, session *services.SessionService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "eco-cycle-game",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())

	origins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// 🔐 Optional: only trusted callers (e.g. the web frontend's proxy)
	if cfg.ServiceToken != "" {
		app.Use(middleware.ServiceTokenMiddleware(cfg.ServiceToken, "/api/health"))
	}

	handlers.SetupRoutes(app, session)
	return app
}

// withRemoteCatalog merges the catalog document from R2 over base. A missing or
// broken document only costs the override; the built-in catalog still seeds.
func withRemoteCatalog(ctx context.Context, src config.CatalogSource, base models.Catalog) models.Catalog {
	client, err := utils.NewR2Client(ctx, utils.R2Credentials{
		AccountID:       src.AccountID,
		AccessKeyID:     src.AccessKeyID,
		AccessKeySecret: src.AccessKeySecret,
	})
	if err != nil {
		logger.Log.Warnw("⚠️  R2 client unavailable, using built-in catalog", "error", err)
		return base
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	remote, err := services.LoadRemoteCatalog(fetchCtx, client, src.Bucket, src.ObjectKey)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Log.Warnw("⚠️  Remote catalog fetch timed out", "bucket", src.Bucket)
		} else {
			logger.Log.Warnw("⚠️  Remote catalog rejected, using built-in catalog", "error", err)
		}
		return base
	}
	return services.MergeCatalog(base, remote)
}
