package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"manomitra/internal/app"
	"manomitra/internal/catalog"
	"manomitra/internal/domain"
	"manomitra/internal/infra/media"
	pgstore "manomitra/internal/infra/postgres"
	pgmigrations "manomitra/internal/infra/postgres/migrations"
	infraredis "manomitra/internal/infra/redis"
)

func TestQuestionnaireFromSeededPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	groups, err := catalog.AgeGroups()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	loader := pgstore.NewCatalogLoader(pool)
	if err := loader.Seed(ctx, groups); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Seeding twice must be an upsert.
	if err := loader.Seed(ctx, groups); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	repo := infraredis.NewCatalogRepository(redisClient, loader, 5*time.Minute, nil)
	service := app.NewQuestionnaireService(repo, nil, nil)

	titles, err := service.AgeGroupTitles(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(titles) != len(groups) || titles[0] != groups[0].Title {
		t.Fatalf("expected catalog order, got %v", titles)
	}

	answers := domain.AnswerSet{}
	answers.Set("0-6 Months", "Motor Milestones", 0, "No")
	answers.Set("0-6 Months", "Speech/Language Milestones", 0, "No")
	result, err := service.Score(ctx, "0-6 Months", answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Tier != domain.TierMild || len(result.FlaggedConcerns) != 2 {
		t.Fatalf("expected mild with two concerns, got %+v", result)
	}

	if _, err := service.AgeGroup(ctx, "12-18 Years"); !errors.Is(err, domain.ErrAgeGroupNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAnalyzeSubmissionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/photo.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("jpeg-bytes"))
	}))
	defer storage.Close()

	store := pgstore.NewSubmissionStore(pool)
	notifier := infraredis.NewStatusNotifier(redisClient, 5*time.Minute, nil)
	model := &scriptedModel{reply: "This is common at this age."}
	service, err := app.NewSubmissionService(app.AnalyzerConfig{
		AIAPIKey:       "server-key",
		StorageBaseURL: storage.URL,
	}, store, media.NewFetcher(nil, 0), model, app.WithNotifier(notifier))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	mediaPath := "media/photo.jpg"
	sub, err := service.Intake(ctx, "He flaps his hands a lot", &mediaPath)
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if err := service.AnalyzeSubmission(ctx, sub.ID, "image/jpeg"); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	row, err := service.Get(ctx, sub.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.Status != domain.StatusCompleted || row.AnalysisResult == nil || row.AnalysisResult.Summary != model.reply {
		t.Fatalf("expected completed row, got %+v", row)
	}
	if last, ok := notifier.Last(ctx, sub.ID); !ok || last.Status != domain.StatusCompleted {
		t.Fatalf("expected completed status in redis, got %+v (%v)", last, ok)
	}

	missing := "media/missing.jpg"
	failing, err := service.Intake(ctx, "see attached", &missing)
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if err := service.AnalyzeSubmission(ctx, failing.ID, "image/jpeg"); err == nil {
		t.Fatalf("expected media fetch failure")
	}
	row, err = service.Get(ctx, failing.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.Status != domain.StatusFailed || row.AnalysisResult != nil {
		t.Fatalf("expected failed row without result, got %+v", row)
	}
}

type scriptedModel struct {
	mu    sync.Mutex
	reply string
	calls int
}

func (m *scriptedModel) Generate(_ context.Context, _ domain.GenerationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.reply, nil
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "mano", "POSTGRES_PASSWORD": "manopass", "POSTGRES_DB": "manodb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://mano:manopass@%s:%s/manodb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
