package domain

import "strings"

// QuestionType controls how a question is answered.
type QuestionType string

const (
	QuestionYesNo  QuestionType = "yes/no"
	QuestionRating QuestionType = "rating"
)

// Labels anchors the low and high ends of a rating scale.
type Labels struct {
	Low  string `json:"low" yaml:"low"`
	High string `json:"high" yaml:"high"`
}

// Question is a single questionnaire item. A nil RedFlag marks it informational.
type Question struct {
	Text    string       `json:"text" yaml:"text"`
	Type    QuestionType `json:"type" yaml:"type"`
	Labels  *Labels      `json:"labels,omitempty" yaml:"labels,omitempty"`
	RedFlag *Condition   `json:"redFlagCondition,omitempty" yaml:"redFlagCondition,omitempty"`
}

// Section groups questions under a developmental category.
type Section struct {
	Category  string     `json:"category" yaml:"category"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// AgeGroup is an immutable catalog entry keyed by its title.
type AgeGroup struct {
	Title    string    `json:"title" yaml:"title"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// AnswerKey identifies one answered question within a questionnaire session.
type AnswerKey struct {
	AgeGroup string
	Category string
	Index    int
}

// AnswerSet holds the answers of one questionnaire session. Re-answering overwrites.
type AnswerSet map[AnswerKey]string

// Set records an answer, replacing any earlier answer for the same key.
func (a AnswerSet) Set(ageGroup, category string, index int, value string) {
	a[AnswerKey{AgeGroup: ageGroup, Category: category, Index: index}] = value
}

// Lookup returns the answer for a question, if any.
func (a AnswerSet) Lookup(ageGroup, category string, index int) (string, bool) {
	v, ok := a[AnswerKey{AgeGroup: ageGroup, Category: category, Index: index}]
	return v, ok
}

// Tier is the severity bucket of a scored questionnaire.
type Tier string

const (
	TierNone        Tier = "none"
	TierMild        Tier = "mild"
	TierSignificant Tier = "significant"
)

// ScoringResult is derived on every submit and never stored.
type ScoringResult struct {
	Tier            Tier     `json:"tier"`
	FlaggedConcerns []string `json:"flaggedConcerns"`
	Narrative       string   `json:"narrative"`
}

// SubmissionStatus tracks a stored submission through analysis.
type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusCompleted SubmissionStatus = "completed"
	StatusFailed    SubmissionStatus = "failed"
)

// AnalysisResult is the JSON document written to submissions.analysis_result.
type AnalysisResult struct {
	Summary string `json:"summary"`
}

// Submission mirrors a row of the submissions table.
type Submission struct {
	ID                 string           `json:"id"`
	ParentConcernsText string           `json:"parent_concerns_text"`
	MediaURL           *string          `json:"media_url"`
	AnalysisResult     *AnalysisResult  `json:"analysis_result"`
	Status             SubmissionStatus `json:"status"`
}

// StatusUpdate is pushed to listeners when a submission changes state.
type StatusUpdate struct {
	SubmissionID string           `json:"submissionId"`
	Status       SubmissionStatus `json:"status"`
	Summary      string           `json:"summary,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// Attachment is a user supplied file held fully in memory.
type Attachment struct {
	Bytes    []byte
	MIMEType string
}

// InlineData is a base64 encoded binary part sent alongside a prompt.
type InlineData struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// GenerationRequest is one model invocation: a prompt and at most one inline part.
type GenerationRequest struct {
	Prompt string
	Inline *InlineData
}

// AnalysisSummary is the model's raw text response.
type AnalysisSummary struct {
	Summary string `json:"summary"`
}

// MilestoneCategory is static developmental content.
type MilestoneCategory struct {
	Title      string   `json:"title" yaml:"title"`
	Icon       string   `json:"icon" yaml:"icon"`
	Milestones []string `json:"milestones" yaml:"milestones"`
}

// ResourceCategory is a filter bucket of the resource directory.
type ResourceCategory struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Resource is one article of the awareness directory.
type Resource struct {
	Title       string   `json:"title" yaml:"title"`
	Category    string   `json:"category" yaml:"category"`
	Source      string   `json:"source" yaml:"source"`
	Description string   `json:"description" yaml:"description"`
	URL         string   `json:"url" yaml:"url"`
	Tags        []string `json:"tags" yaml:"tags"`
	ReadTime    string   `json:"readTime" yaml:"readTime"`
}

// Matches reports whether the lower-cased query appears in the title, description or a tag.
func (r Resource) Matches(query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Title), query) ||
		strings.Contains(strings.ToLower(r.Description), query) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// ActivityCategory groups at-home activities by developmental area.
type ActivityCategory struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon" yaml:"icon"`
}

// Activity is one guided at-home exercise.
type Activity struct {
	ID           string   `json:"id" yaml:"id"`
	Category     string   `json:"category" yaml:"category"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	AgeRange     string   `json:"ageRange" yaml:"ageRange"`
	Duration     string   `json:"duration" yaml:"duration"`
	Difficulty   string   `json:"difficulty" yaml:"difficulty"`
	Benefits     []string `json:"benefits" yaml:"benefits"`
	Instructions []string `json:"instructions" yaml:"instructions"`
	Materials    []string `json:"materials" yaml:"materials"`
	Tips         string   `json:"tips" yaml:"tips"`
}

// SelfCareTool is a short well-being exercise for the parent.
type SelfCareTool struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	Duration    string `json:"duration" yaml:"duration"`
}

// Helpline is an external support contact.
type Helpline struct {
	Name        string `json:"name" yaml:"name"`
	Phone       string `json:"phone" yaml:"phone"`
	Description string `json:"description" yaml:"description"`
	Hours       string `json:"hours" yaml:"hours"`
}

// SupportContent is the parental support page.
type SupportContent struct {
	SelfCare  []SelfCareTool `json:"selfCare" yaml:"selfCare"`
	Helplines []Helpline     `json:"helplines" yaml:"helplines"`
}
