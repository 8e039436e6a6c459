// Package catalog holds the static questionnaire, milestone and resource content.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"manomitra/internal/domain"
)

//go:embed questionnaire.yaml
var questionnaireYAML []byte

//go:embed milestones.yaml
var milestonesYAML []byte

//go:embed resources.yaml
var resourcesYAML []byte

//go:embed activities.yaml
var activitiesYAML []byte

//go:embed support.yaml
var supportYAML []byte

type resourceFile struct {
	Categories []domain.ResourceCategory `yaml:"categories"`
	Resources  []domain.Resource         `yaml:"resources"`
}

type activityFile struct {
	Categories []domain.ActivityCategory `yaml:"categories"`
	Activities []domain.Activity         `yaml:"activities"`
}

var (
	ageGroupsOnce = sync.OnceValues(func() ([]domain.AgeGroup, error) {
		return ParseAgeGroups(questionnaireYAML)
	})
	milestonesOnce = sync.OnceValues(func() ([]domain.MilestoneCategory, error) {
		var out []domain.MilestoneCategory
		if err := yaml.Unmarshal(milestonesYAML, &out); err != nil {
			return nil, fmt.Errorf("parse milestones: %w", err)
		}
		return out, nil
	})
	resourcesOnce = sync.OnceValues(func() (resourceFile, error) {
		var out resourceFile
		if err := yaml.Unmarshal(resourcesYAML, &out); err != nil {
			return out, fmt.Errorf("parse resources: %w", err)
		}
		return out, nil
	})
	activitiesOnce = sync.OnceValues(func() (activityFile, error) {
		var out activityFile
		if err := yaml.Unmarshal(activitiesYAML, &out); err != nil {
			return out, fmt.Errorf("parse activities: %w", err)
		}
		known := make(map[string]struct{}, len(out.Categories))
		for _, c := range out.Categories {
			known[c.ID] = struct{}{}
		}
		for _, a := range out.Activities {
			if _, ok := known[a.Category]; !ok {
				return out, fmt.Errorf("activity %s: unknown category %q", a.ID, a.Category)
			}
		}
		return out, nil
	})
	supportOnce = sync.OnceValues(func() (domain.SupportContent, error) {
		var out domain.SupportContent
		if err := yaml.Unmarshal(supportYAML, &out); err != nil {
			return out, fmt.Errorf("parse support: %w", err)
		}
		return out, nil
	})
)

// AgeGroups returns the built-in questionnaire in display order.
func AgeGroups() ([]domain.AgeGroup, error) {
	return ageGroupsOnce()
}

// AgeGroupMap indexes the built-in questionnaire by title.
func AgeGroupMap() (map[string]domain.AgeGroup, error) {
	groups, err := AgeGroups()
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.AgeGroup, len(groups))
	for _, g := range groups {
		out[g.Title] = g
	}
	return out, nil
}

// ParseAgeGroups decodes a YAML questionnaire and checks titles are unique and rated
// questions carry labels.
func ParseAgeGroups(raw []byte) ([]domain.AgeGroup, error) {
	var groups []domain.AgeGroup
	if err := yaml.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("parse questionnaire: %w", err)
	}
	seen := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		if g.Title == "" {
			return nil, fmt.Errorf("questionnaire: age group without title")
		}
		if _, dup := seen[g.Title]; dup {
			return nil, fmt.Errorf("questionnaire: duplicate age group %q", g.Title)
		}
		seen[g.Title] = struct{}{}
		for _, s := range g.Sections {
			for i, q := range s.Questions {
				if q.Type == domain.QuestionRating && q.Labels == nil {
					return nil, fmt.Errorf("questionnaire: %s/%s[%d] rating without labels", g.Title, s.Category, i)
				}
			}
		}
	}
	return groups, nil
}

// Milestones returns the developmental milestone categories.
func Milestones() ([]domain.MilestoneCategory, error) {
	return milestonesOnce()
}

// Resources returns the awareness directory articles.
func Resources() ([]domain.Resource, error) {
	f, err := resourcesOnce()
	return f.Resources, err
}

// ResourceCategories returns the directory filter buckets, "all" first.
func ResourceCategories() ([]domain.ResourceCategory, error) {
	f, err := resourcesOnce()
	return f.Categories, err
}

// Activities returns the at-home activity library in display order.
func Activities() ([]domain.Activity, error) {
	f, err := activitiesOnce()
	return f.Activities, err
}

// ActivityCategories returns the activity areas.
func ActivityCategories() ([]domain.ActivityCategory, error) {
	f, err := activitiesOnce()
	return f.Categories, err
}

// Support returns the parental self-care tools and helplines.
func Support() (domain.SupportContent, error) {
	return supportOnce()
}
