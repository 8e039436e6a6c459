package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"manomitra/internal/app"
	"manomitra/internal/catalog"
	"manomitra/internal/config"
	"manomitra/internal/domain"
	"manomitra/internal/infra/gemini"
	"manomitra/internal/infra/media"
	"manomitra/internal/infra/memory"
	pgstore "manomitra/internal/infra/postgres"
	infraredis "manomitra/internal/infra/redis"
	"manomitra/internal/metrics"
	transport "manomitra/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()
			return runServer(cmd.Context(), *configPath, *port, logger)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string, logger *zap.Logger) error {
	cfg, err := config.Load(loadConfigFile(configPath))
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	groups, err := catalog.AgeGroups()
	if err != nil {
		return err
	}
	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(groups)
	if pool != nil {
		pgLoader := pgstore.NewCatalogLoader(pool)
		if err := ensureCatalogSeeded(ctx, pgLoader, groups, logger); err != nil {
			return err
		}
		loader = pgLoader
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogRepo app.CatalogRepository
	if redisClient != nil {
		catalogRepo = infraredis.NewCatalogRepository(redisClient, loader, catalogTTL, logger)
	} else {
		catalogRepo = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var store app.SubmissionRepository
	if pool != nil {
		store = pgstore.NewSubmissionStore(pool)
	} else {
		store = memory.NewSubmissionStore()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := metrics.NewPrometheusObserver("manomitra", registry)
	if err != nil {
		return err
	}

	hub := app.NewStatusHub()
	notifiers := app.Notifiers{hub}
	var statusSource transport.StatusSource = hub
	if redisClient != nil {
		redisNotifier := infraredis.NewStatusNotifier(redisClient, redisTTL, logger)
		notifiers = append(notifiers, redisNotifier)
		statusSource = redisNotifier
	}

	aiTimeout := config.TTLDuration(cfg.AI.Timeout, 60*time.Second)
	opts := []app.Option{app.WithLogger(logger), app.WithObserver(observer), app.WithNotifier(notifiers)}

	submissions, err := newSubmissionService(ctx, cfg, aiTimeout, store, opts)
	if err != nil {
		return err
	}
	analyzer, err := newClientAnalyzer(ctx, cfg, aiTimeout, opts)
	if err != nil {
		return err
	}
	if submissions == nil {
		logger.Warn("ai.apiKey not set; submissions and analyze-input are disabled")
	}
	if analyzer == nil {
		logger.Warn("client.aiApiKey not set; direct analysis is disabled")
	}

	content, err := loadContent()
	if err != nil {
		return err
	}

	router := transport.NewRouter(transport.Container{
		Questionnaire: app.NewQuestionnaireService(catalogRepo, observer, logger),
		Analyzer:      analyzer,
		Submissions:   submissions,
		Content:       app.NewContentService(content),
		Status:        statusSource,
		Gatherer:      registry,
		Logger:        logger,
	})

	// The write timeout must outlast the model call.
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: aiTimeout + 15*time.Second,
	}

	go func() {
		logger.Info("starting manomitra", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newSubmissionService returns nil without error when no server key is configured.
func newSubmissionService(ctx context.Context, cfg config.Config, timeout time.Duration, store app.SubmissionRepository, opts []app.Option) (*app.SubmissionService, error) {
	model, err := gemini.NewModel(ctx, gemini.Config{APIKey: cfg.AI.APIKey, Model: cfg.AI.Model, BaseURL: cfg.AI.BaseURL})
	if err != nil {
		return nil, ignoreMissingKey(err)
	}
	return app.NewSubmissionService(app.AnalyzerConfig{
		AIAPIKey:       cfg.AI.APIKey,
		StorageBaseURL: cfg.Storage.BaseURL,
		Timeout:        timeout,
	}, store, media.NewFetcher(nil, media.DefaultMaxBytes), model, opts...)
}

// newClientAnalyzer returns nil without error when no client key is configured.
func newClientAnalyzer(ctx context.Context, cfg config.Config, timeout time.Duration, opts []app.Option) (*app.Analyzer, error) {
	model, err := gemini.NewModel(ctx, gemini.Config{APIKey: cfg.Client.AIAPIKey, Model: cfg.AI.Model, BaseURL: cfg.AI.BaseURL})
	if err != nil {
		return nil, ignoreMissingKey(err)
	}
	return app.NewAnalyzer(app.AnalyzerConfig{AIAPIKey: cfg.Client.AIAPIKey, Timeout: timeout}, model, opts...)
}

func ignoreMissingKey(err error) error {
	if errors.Is(err, domain.ErrMissingAPIKey) {
		return nil
	}
	return err
}

func loadContent() (app.Content, error) {
	var (
		c   app.Content
		err error
	)
	if c.Milestones, err = catalog.Milestones(); err != nil {
		return c, err
	}
	if c.Resources, err = catalog.Resources(); err != nil {
		return c, err
	}
	if c.ResourceCategories, err = catalog.ResourceCategories(); err != nil {
		return c, err
	}
	if c.Activities, err = catalog.Activities(); err != nil {
		return c, err
	}
	if c.ActivityCategories, err = catalog.ActivityCategories(); err != nil {
		return c, err
	}
	if c.Support, err = catalog.Support(); err != nil {
		return c, err
	}
	return c, nil
}
