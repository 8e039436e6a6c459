package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"manomitra/internal/domain"
	"manomitra/internal/scoring"
)

// CatalogRepository loads questionnaire content (from cache/backing store).
type CatalogRepository interface {
	GetAgeGroup(ctx context.Context, title string) (domain.AgeGroup, error)
	ListAgeGroups(ctx context.Context) ([]string, error)
}

// ScoreObserver is told about every scored questionnaire.
type ScoreObserver interface {
	RecordScore(tier domain.Tier)
}

// QuestionnaireService contains the Know Your Child use cases.
type QuestionnaireService struct {
	catalog  CatalogRepository
	observer ScoreObserver
	logger   *zap.Logger
}

func NewQuestionnaireService(catalog CatalogRepository, observer ScoreObserver, logger *zap.Logger) *QuestionnaireService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionnaireService{catalog: catalog, observer: observer, logger: logger}
}

// AgeGroupTitles lists the selectable age groups in display order.
func (s *QuestionnaireService) AgeGroupTitles(ctx context.Context) ([]string, error) {
	return s.catalog.ListAgeGroups(ctx)
}

// AgeGroup returns the questions of one age group.
func (s *QuestionnaireService) AgeGroup(ctx context.Context, title string) (domain.AgeGroup, error) {
	if strings.TrimSpace(title) == "" {
		return domain.AgeGroup{}, domain.NewValidationError(domain.ErrAgeGroupNotSelected)
	}
	return s.catalog.GetAgeGroup(ctx, title)
}

// Score evaluates a questionnaire session. Submitting without an age group is a validation error.
func (s *QuestionnaireService) Score(ctx context.Context, title string, answers domain.AnswerSet) (domain.ScoringResult, error) {
	group, err := s.AgeGroup(ctx, title)
	if err != nil {
		return domain.ScoringResult{}, err
	}
	result := scoring.Score(group, answers)
	if s.observer != nil {
		s.observer.RecordScore(result.Tier)
	}
	s.logger.Debug("questionnaire scored",
		zap.String("ageGroup", title),
		zap.String("tier", string(result.Tier)),
		zap.Int("flagged", len(result.FlaggedConcerns)))
	return result, nil
}
