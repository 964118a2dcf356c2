package domain

import "time"

// The accessors below let SourceRecord and CitizenIssue satisfy the geo
// package's read-only view interfaces.

// RecordTags returns the source's tags.
func (s *SourceRecord) RecordTags() []string { return s.Tags }

// Owner returns the jurisdiction owning the source's body.
func (s *SourceRecord) Owner() Jurisdiction { return s.Jurisdiction }

// Meeting returns the meeting date, nil when unknown.
func (s *SourceRecord) Meeting() *time.Time { return s.MeetingDate }

// Created returns the ingest time.
func (s *SourceRecord) Created() time.Time { return s.CreatedAt }

// IssueCategory returns the post's category.
func (c *CitizenIssue) IssueCategory() string { return c.Category }

// Place returns the post's denormalised geography.
func (c *CitizenIssue) Place() GeoQuery {
	return GeoQuery{City: c.City, County: c.County, StateName: c.StateName}
}

// Votes returns the vote tally.
func (c *CitizenIssue) Votes() int { return c.Score }

// Created returns the posting time.
func (c *CitizenIssue) Created() time.Time { return c.CreatedAt }
