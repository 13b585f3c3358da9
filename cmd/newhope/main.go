package main

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/newhope/newhope-admin/internal/analytics"
	"github.com/newhope/newhope-admin/internal/analytics/export"
	analytichttp "github.com/newhope/newhope-admin/internal/analytics/http"
	"github.com/newhope/newhope-admin/internal/analytics/svg"
	"github.com/newhope/newhope-admin/internal/analytics/ui"
	"github.com/newhope/newhope-admin/internal/app"
	"github.com/newhope/newhope-admin/internal/auth"
	jobmetrics "github.com/newhope/newhope-admin/internal/jobs"
	"github.com/newhope/newhope-admin/internal/masterdata/categories"
	"github.com/newhope/newhope-admin/internal/masterdata/facilities"
	"github.com/newhope/newhope-admin/internal/masterdata/products"
	"github.com/newhope/newhope-admin/internal/observability"
	"github.com/newhope/newhope-admin/internal/orders"
	"github.com/newhope/newhope-admin/internal/platform/cache"
	"github.com/newhope/newhope-admin/internal/promotions"
	"github.com/newhope/newhope-admin/internal/settings"
	"github.com/newhope/newhope-admin/internal/shared"
	"github.com/newhope/newhope-admin/internal/users"
	"github.com/newhope/newhope-admin/internal/view"
	"github.com/newhope/newhope-admin/jobs"
	"github.com/newhope/newhope-admin/report"
)

type lineRenderer struct{}

func (lineRenderer) Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error) {
	return svg.Line(width, height, series, labels, opts)
}

type barRenderer struct{}

func (barRenderer) Bars(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error) {
	return svg.Bars(width, height, seriesA, seriesB, labels, opts)
}

type donutRenderer struct{}

func (donutRenderer) Donut(width, height int, values []float64, labels []string, opts svg.DonutOpts) (template.HTML, error) {
	return svg.Donut(width, height, values, labels, opts)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	loc := cfg.Location()

	store, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	sessionManager := shared.NewSessionManager(redisClient, "newhope_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	templates, err := view.NewEngine(view.WithLocation(loc))
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	pages := view.NewResponder(templates, csrfManager, logger)

	analyticsCache := analytics.NewCache(redisClient, cfg.CacheTTL).WithMetrics(metrics.Registerer())
	if err := analyticsCache.ListenForInvalidation(ctx, func(version int64) {
		logger.Debug("dashboard cache bumped", slog.Int64("version", version))
	}); err != nil {
		logger.Warn("subscribe cache invalidation", slog.Any("error", err))
	}

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()
	invalidator := jobs.NewQueueInvalidator(analyticsCache, queue, jobMetrics, logger)

	source := analytics.NewStoreSource(store, logger)
	analyticsService := analytics.NewService(source, analyticsCache,
		analytics.WithLocation(loc),
		analytics.WithLogger(logger),
		analytics.WithUserCounter(source),
	)
	var pdf analytichttp.PDFService
	if cfg.GotenbergURL != "" {
		pdf = export.NewPDFExporter(report.NewClient(cfg.GotenbergURL, &http.Client{Timeout: 30 * time.Second}))
	}
	analyticsHandler := analytichttp.NewHandler(
		logger,
		analyticsService,
		pages,
		ui.Renderers{Line: lineRenderer{}, Bar: barRenderer{}, Donut: donutRenderer{}},
		pdf,
	)

	authService := auth.NewService(auth.NewRepository(store))
	authHandler := auth.NewHandler(logger, authService, tokens, pages, sessionManager)

	orderService := orders.NewService(orders.NewRepository(store), invalidator, logger)
	categoryService := categories.NewService(categories.NewRepository(store), invalidator, logger)
	productService := products.NewService(products.NewRepository(store), categoryService, invalidator, logger)
	facilityService := facilities.NewService(facilities.NewRepository(store), logger)
	userService := users.NewService(users.NewRepository(store), facilityService, invalidator, logger)
	promotionService := promotions.NewService(promotions.NewRepository(store), invalidator, logger)
	settingsService := settings.NewService(store, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Tokens:         tokens,
		Metrics:        metrics,
		Ready: func(r *http.Request) error {
			return store.Ping(r.Context())
		},
		AuthHandler:       authHandler,
		AnalyticsHandler:  analyticsHandler,
		OrdersHandler:     orders.NewHandler(logger, orderService, pages),
		ProductsHandler:   products.NewHandler(logger, productService, categoryService, pages),
		CategoriesHandler: categories.NewHandler(logger, categoryService, pages),
		FacilitiesHandler: facilities.NewHandler(logger, facilityService, pages),
		UsersHandler:      users.NewHandler(logger, userService, facilityService, pages),
		PromotionsHandler: promotions.NewHandler(logger, promotionService, productService, pages),
		SettingsHandler:   settings.NewHandler(logger, settingsService, pages),
		JobHandler:        jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
