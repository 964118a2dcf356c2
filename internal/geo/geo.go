// Package geo scopes government sources and citizen issues to a geography.
//
// Queries are lazy values: they hold predicates, refinements and a limit, and
// are rendered to SQL (ToSQL) or evaluated against read-only record views
// (Match, SelectSources, SelectIssues). A query built from an empty GeoQuery
// matches nothing.
package geo

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

// SourceView is the minimal read-only shape of a government source.
type SourceView interface {
	RecordTags() []string
	Owner() domain.Jurisdiction
	Meeting() *time.Time
	Created() time.Time
}

// IssueView is the minimal read-only shape of a citizen issue.
type IssueView interface {
	IssueCategory() string
	Place() domain.GeoQuery
	Votes() int
	Created() time.Time
}

const countySuffix = "county"

// NormalizeCounty appends " County" unless the name already ends with
// "county" in any case. Blank input stays blank.
func NormalizeCounty(county string) string {
	c := strings.TrimSpace(county)
	if c == "" {
		return ""
	}
	if strings.HasSuffix(strings.ToLower(c), countySuffix) {
		return c
	}
	return c + " County"
}

// normalize trims the query and suffixes the county.
func normalize(g domain.GeoQuery) domain.GeoQuery {
	n := g.Normalized()
	n.County = NormalizeCounty(n.County)
	return n
}

// containsFold reports whether needle occurs in haystack, ignoring case.
// An empty needle never matches.
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(haystack), fold.String(needle))
}
