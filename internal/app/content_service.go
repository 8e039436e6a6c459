package app

import (
	"strings"

	"manomitra/internal/domain"
)

// Content is the static material served alongside the questionnaire.
type Content struct {
	Milestones         []domain.MilestoneCategory
	Resources          []domain.Resource
	ResourceCategories []domain.ResourceCategory
	Activities         []domain.Activity
	ActivityCategories []domain.ActivityCategory
	Support            domain.SupportContent
}

// ContentService serves milestones, the awareness hub, at-home activities and parent support.
type ContentService struct {
	content Content
}

func NewContentService(content Content) *ContentService {
	return &ContentService{content: content}
}

func (s *ContentService) Milestones() []domain.MilestoneCategory {
	return s.content.Milestones
}

func (s *ContentService) ResourceCategories() []domain.ResourceCategory {
	return s.content.ResourceCategories
}

// SearchResources filters by category ("" or "all" matches everything) and by a
// case-insensitive substring of the title, description or tags.
func (s *ContentService) SearchResources(query, category string) []domain.Resource {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Resource, 0, len(s.content.Resources))
	for _, r := range s.content.Resources {
		if category != "" && category != "all" && r.Category != category {
			continue
		}
		if !r.Matches(query) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *ContentService) ActivityCategories() []domain.ActivityCategory {
	return s.content.ActivityCategories
}

// Activities returns the activities of one category, or all of them for "".
func (s *ContentService) Activities(category string) []domain.Activity {
	out := make([]domain.Activity, 0, len(s.content.Activities))
	for _, a := range s.content.Activities {
		if category == "" || a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

func (s *ContentService) Support() domain.SupportContent {
	return s.content.Support
}
