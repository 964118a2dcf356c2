package domain

import "time"

// CategoryCount ranks candidate categories for a geography.
type CategoryCount struct {
	Category Label `json:"category"`
	Count    int   `json:"count"`
}

// GovernmentAction is the section view of a SourceRecord.
type GovernmentAction struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	Date       *time.Time `json:"date"`
	Tags       []string   `json:"tags"`
	URL        string     `json:"url"`
	SourceType SourceType `json:"source_type"`
}

// IssueSummary is the section view of a CitizenIssue.
type IssueSummary struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Score           int       `json:"score"`
	CreatedAt       time.Time `json:"created_at"`
	PrimaryCategory string    `json:"primary_category"`
}

// Section pairs government actions with citizen issues for one category.
type Section struct {
	Category          Label              `json:"category"`
	GovernmentActions []GovernmentAction `json:"government_actions"`
	CitizenIssues     []IssueSummary     `json:"citizen_issues"`
}

// DiscoverResult is the output of one discovery call.
type DiscoverResult struct {
	Geo                GeoQuery              `json:"geo"`
	FastClassification *ClassificationResult `json:"fast_classification,omitempty"`
	TopCategories      []CategoryCount       `json:"top_categories,omitempty"`
	Sections           []Section             `json:"sections"`
}

// ToAction projects a SourceRecord into its section view.
func (s *SourceRecord) ToAction() GovernmentAction {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return GovernmentAction{
		ID:         s.ID,
		Title:      s.Title,
		Summary:    s.Summary,
		Date:       s.MeetingDate,
		Tags:       tags,
		URL:        s.URL,
		SourceType: s.Type,
	}
}

// ToSummary projects a CitizenIssue into its section view.
func (c *CitizenIssue) ToSummary() IssueSummary {
	return IssueSummary{
		ID:              c.ID,
		Title:           c.Title,
		Score:           c.Score,
		CreatedAt:       c.CreatedAt,
		PrimaryCategory: c.Category,
	}
}
