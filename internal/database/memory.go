package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
	"github.com/StreetLamp05/glassgov-be/internal/geo"
)

// Fixture is the JSON layout read by LoadFixture.
type Fixture struct {
	Sources []*domain.SourceRecord `json:"sources"`
	Issues  []*domain.CitizenIssue `json:"issues"`
}

// MemoryStore is a read-only record source over in-memory records. Queries
// are evaluated with the same predicates the SQL rendering uses.
type MemoryStore struct {
	sources []*domain.SourceRecord
	issues  []*domain.CitizenIssue
}

// NewMemoryStore wraps the given records. The store never mutates them.
func NewMemoryStore(sources []*domain.SourceRecord, issues []*domain.CitizenIssue) *MemoryStore {
	return &MemoryStore{sources: sources, issues: issues}
}

// LoadFixture reads a Fixture file into a MemoryStore.
func LoadFixture(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err = json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return NewMemoryStore(f.Sources, f.Issues), nil
}

// GovernmentActions evaluates q over the stored sources.
func (m *MemoryStore) GovernmentActions(ctx context.Context, q geo.SourceQuery) ([]domain.SourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matched := geo.SelectSources(q, m.sources)
	out := make([]domain.SourceRecord, len(matched))
	for i, r := range matched {
		out[i] = *r
	}
	return out, nil
}

// CitizenIssues evaluates q over the stored issues.
func (m *MemoryStore) CitizenIssues(ctx context.Context, q geo.IssueQuery) ([]domain.CitizenIssue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matched := geo.SelectIssues(q, m.issues)
	out := make([]domain.CitizenIssue, len(matched))
	for i, r := range matched {
		out[i] = *r
	}
	return out, nil
}

// SourceTagCounts counts matching sources per tag.
func (m *MemoryStore) SourceTagCounts(ctx context.Context, q geo.SourceQuery) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return geo.CountSourceTags(q, m.sources), nil
}

// IssueCategoryCounts counts matching issues per category.
func (m *MemoryStore) IssueCategoryCounts(ctx context.Context, q geo.IssueQuery) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return geo.CountIssueCategories(q, m.issues), nil
}
