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

// SubmissionStore reads and updates rows of the submissions table.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

func (s *SubmissionStore) Create(ctx context.Context, sub domain.Submission) error {
	status := sub.Status
	if status == "" {
		status = domain.StatusPending
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO submissions (id, parent_concerns_text, media_url, status) VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.ParentConcernsText, sub.MediaURL, string(status))
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *SubmissionStore) Get(ctx context.Context, id string) (domain.Submission, error) {
	var (
		sub    domain.Submission
		status string
		result []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, parent_concerns_text, media_url, analysis_result, status FROM submissions WHERE id=$1`, id,
	).Scan(&sub.ID, &sub.ParentConcernsText, &sub.MediaURL, &result, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("load submission: %w", err)
	}
	sub.Status = domain.SubmissionStatus(status)
	if len(result) > 0 {
		var ar domain.AnalysisResult
		if err := json.Unmarshal(result, &ar); err != nil {
			return domain.Submission{}, fmt.Errorf("unmarshal analysis result: %w", err)
		}
		sub.AnalysisResult = &ar
	}
	return sub, nil
}

func (s *SubmissionStore) Complete(ctx context.Context, id string, result domain.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal analysis result: %w", err)
	}
	return s.update(ctx, `UPDATE submissions SET analysis_result=$2::jsonb, status=$3 WHERE id=$1`,
		id, string(data), string(domain.StatusCompleted))
}

func (s *SubmissionStore) MarkFailed(ctx context.Context, id string) error {
	return s.update(ctx, `UPDATE submissions SET status=$2 WHERE id=$1`, id, string(domain.StatusFailed))
}

func (s *SubmissionStore) update(ctx context.Context, sql string, args ...interface{}) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}
