package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"manomitra/internal/catalog"
	"manomitra/internal/domain"
	"manomitra/internal/scoring"
)

// answersFile is the YAML accepted by `score --answers`:
//
//	ageGroup: 0-6 Months
//	answers:
//	  - {category: Motor Milestones, index: 0, value: "No"}
type answersFile struct {
	AgeGroup string `yaml:"ageGroup"`
	Answers  []struct {
		Category string `yaml:"category"`
		Index    int    `yaml:"index"`
		Value    string `yaml:"value"`
	} `yaml:"answers"`
}

// NewScoreCmd scores an answers file against the embedded questionnaire.
func NewScoreCmd() *cobra.Command {
	var answersPath string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a questionnaire answers file",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := scoreFile(answersPath)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&answersPath, "answers", "", "path to the answers YAML file")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func scoreFile(path string) (domain.ScoringResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.ScoringResult{}, err
	}
	var file answersFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return domain.ScoringResult{}, fmt.Errorf("parse answers: %w", err)
	}
	if file.AgeGroup == "" {
		return domain.ScoringResult{}, domain.NewValidationError(domain.ErrAgeGroupNotSelected)
	}

	groups, err := catalog.AgeGroupMap()
	if err != nil {
		return domain.ScoringResult{}, err
	}
	group, ok := groups[file.AgeGroup]
	if !ok {
		return domain.ScoringResult{}, fmt.Errorf("%w: %s", domain.ErrAgeGroupNotFound, file.AgeGroup)
	}

	answers := domain.AnswerSet{}
	for _, a := range file.Answers {
		answers.Set(file.AgeGroup, a.Category, a.Index, a.Value)
	}
	return scoring.Score(group, answers), nil
}
