// Package testhelpers provides shared test doubles for GlassGov packages.
package testhelpers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
	"github.com/StreetLamp05/glassgov-be/internal/geo"
)

// ErrStoreUnavailable is returned by FailingRecords.
var ErrStoreUnavailable = errors.New("record store unavailable")

// BaseTime is the reference creation time used by the record builders.
var BaseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// StaticScorer returns a copy of its scores for every text and counts calls.
type StaticScorer struct {
	mu     sync.Mutex
	scores map[domain.Label]float64
	calls  int
}

// NewStaticScorer creates a scorer that always returns scores.
func NewStaticScorer(scores map[domain.Label]float64) *StaticScorer {
	return &StaticScorer{scores: scores}
}

// Scores implements the semantic scorer contract.
func (s *StaticScorer) Scores(context.Context, string) map[domain.Label]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	out := make(map[domain.Label]float64, len(s.scores))
	for k, v := range s.scores {
		out[k] = v
	}
	return out
}

// Calls returns how many times Scores ran.
func (s *StaticScorer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// RecordingEnqueuer captures enrichment submissions.
type RecordingEnqueuer struct {
	mu     sync.Mutex
	texts  []string
	Reject bool
}

// Enqueue records text and reports acceptance.
func (r *RecordingEnqueuer) Enqueue(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Reject {
		return false
	}
	r.texts = append(r.texts, text)
	return true
}

// Texts returns the accepted submissions.
func (r *RecordingEnqueuer) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

// FailingRecords is a record source whose every call fails.
type FailingRecords struct{}

// GovernmentActions always fails.
func (FailingRecords) GovernmentActions(context.Context, geo.SourceQuery) ([]domain.SourceRecord, error) {
	return nil, ErrStoreUnavailable
}

// CitizenIssues always fails.
func (FailingRecords) CitizenIssues(context.Context, geo.IssueQuery) ([]domain.CitizenIssue, error) {
	return nil, ErrStoreUnavailable
}

// SourceTagCounts always fails.
func (FailingRecords) SourceTagCounts(context.Context, geo.SourceQuery) (map[string]int, error) {
	return nil, ErrStoreUnavailable
}

// IssueCategoryCounts always fails.
func (FailingRecords) IssueCategoryCounts(context.Context, geo.IssueQuery) (map[string]int, error) {
	return nil, ErrStoreUnavailable
}

// CitySource builds a source owned by a city jurisdiction.
func CitySource(id, city string, tags ...string) *domain.SourceRecord {
	return &domain.SourceRecord{
		ID:        id,
		Title:     "Source " + id,
		Type:      domain.SourceCouncilFile,
		Tags:      tags,
		CreatedAt: BaseTime,
		Jurisdiction: domain.Jurisdiction{
			ID: "city-" + city, Level: domain.LevelCity, Name: city, StateName: "California",
		},
	}
}

// CityIssue builds a citizen issue in city with the given category and score.
func CityIssue(id, city, category string, score int) *domain.CitizenIssue {
	return &domain.CitizenIssue{
		ID:        id,
		Title:     "Issue " + id,
		Category:  category,
		City:      city,
		StateName: "California",
		Score:     score,
		CreatedAt: BaseTime,
	}
}
