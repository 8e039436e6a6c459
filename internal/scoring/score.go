// Package scoring evaluates questionnaire answers against red-flag rules.
package scoring

import (
	"manomitra/internal/domain"
)

const mildLimit = 2

// Score walks the age group in declaration order and buckets the flagged answers into a tier.
// Unanswered questions and questions without a rule never flag.
func Score(group domain.AgeGroup, answers domain.AnswerSet) domain.ScoringResult {
	flagged := []string{}
	for _, section := range group.Sections {
		for i, question := range section.Questions {
			answer, ok := answers.Lookup(group.Title, section.Category, i)
			if !ok {
				continue
			}
			if flags(question, answer) {
				flagged = append(flagged, question.Text)
			}
		}
	}

	tier := tierFor(len(flagged))
	return domain.ScoringResult{
		Tier:            tier,
		FlaggedConcerns: flagged,
		Narrative:       Narrative(tier, flagged),
	}
}

func flags(q domain.Question, answer string) bool {
	if q.RedFlag == nil || q.RedFlag.Rule == nil {
		return false
	}
	return q.RedFlag.Flags(answer)
}

func tierFor(count int) domain.Tier {
	switch {
	case count == 0:
		return domain.TierNone
	case count <= mildLimit:
		return domain.TierMild
	default:
		return domain.TierSignificant
	}
}
