package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"manomitra/internal/catalog"
	"manomitra/internal/config"
	"manomitra/internal/domain"
	pgstore "manomitra/internal/infra/postgres"
	pgmigrations "manomitra/internal/infra/postgres/migrations"
)

// NewMigrateCmd applies database migrations and optionally seeds the questionnaire catalog.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			cfg, err := config.Load(loadConfigFile(*configPath))
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			if seed {
				return seedCatalog(cmd.Context(), cfg, logger)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "upsert the embedded questionnaire into Postgres")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		logger.Info("no new migrations")
		return nil
	}
	logger.Info("migrations applied", zap.String("group", group.String()))
	return nil
}

func seedCatalog(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	groups, err := catalog.AgeGroups()
	if err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pgstore.NewCatalogLoader(pool).Seed(ctx, groups); err != nil {
		return err
	}
	logger.Info("questionnaire seeded", zap.Int("ageGroups", len(groups)))
	return nil
}

type catalogSeeder interface {
	ListAgeGroups(ctx context.Context) ([]string, error)
	Seed(ctx context.Context, groups []domain.AgeGroup) error
}

// ensureCatalogSeeded loads the embedded questionnaire when the database holds none.
func ensureCatalogSeeded(ctx context.Context, seeder catalogSeeder, groups []domain.AgeGroup, logger *zap.Logger) error {
	existing, err := seeder.ListAgeGroups(ctx)
	if err != nil {
		return fmt.Errorf("list age groups: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	if err := seeder.Seed(ctx, groups); err != nil {
		return fmt.Errorf("seed questionnaire: %w", err)
	}
	logger.Info("empty questionnaire tables seeded", zap.Int("ageGroups", len(groups)))
	return nil
}
