package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"manomitra/internal/domain"
)

// CatalogLoader loads age group JSONB from the questionnaires table.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadAgeGroup(ctx context.Context, title string) (domain.AgeGroup, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM questionnaires WHERE title=$1`, title).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AgeGroup{}, domain.ErrAgeGroupNotFound
	}
	if err != nil {
		return domain.AgeGroup{}, fmt.Errorf("load age group: %w", err)
	}
	var group domain.AgeGroup
	if err := json.Unmarshal(raw, &group); err != nil {
		return domain.AgeGroup{}, fmt.Errorf("unmarshal age group: %w", err)
	}
	return group, nil
}

func (l *CatalogLoader) ListAgeGroups(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT title FROM questionnaires ORDER BY position, title`)
	if err != nil {
		return nil, fmt.Errorf("list age groups: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan age group: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// Seed upserts the given age groups, keeping their order in the position column.
func (l *CatalogLoader) Seed(ctx context.Context, groups []domain.AgeGroup) error {
	batch := &pgx.Batch{}
	for i, g := range groups {
		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshal age group %q: %w", g.Title, err)
		}
		batch.Queue(`INSERT INTO questionnaires (title, position, data) VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (title) DO UPDATE SET position=EXCLUDED.position, data=EXCLUDED.data, updated_at=now()`,
			g.Title, i, string(data))
	}
	br := l.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range groups {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("seed questionnaires: %w", err)
		}
	}
	return nil
}
