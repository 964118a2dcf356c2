package geo

import (
	"slices"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

const issueColumns = `id, title, COALESCE(body, '') AS body, category::text AS category,
	COALESCE(city, '') AS city, COALESCE(county, '') AS county, COALESCE(state_name, '') AS state_name,
	COALESCE(score, 0) AS score, created_at`

// IssueQuery selects citizen issues by their denormalised geography.
type IssueQuery struct {
	geo      domain.GeoQuery
	category string
	limit    int
}

// Issues starts an issue query for g.
func Issues(g domain.GeoQuery) IssueQuery {
	return IssueQuery{geo: normalize(g)}
}

// InCategory keeps issues whose category equals category.
func (q IssueQuery) InCategory(category string) IssueQuery {
	q.category = category
	return q
}

// Limit caps the result size. n <= 0 removes the cap.
func (q IssueQuery) Limit(n int) IssueQuery {
	q.limit = max(n, 0)
	return q
}

// Geo returns the normalised geography.
func (q IssueQuery) Geo() domain.GeoQuery { return q.geo }

// Empty reports whether the query can match nothing.
func (q IssueQuery) Empty() bool { return q.geo.IsEmpty() }

// Match evaluates the query's predicates against v.
func (q IssueQuery) Match(v IssueView) bool {
	if q.Empty() {
		return false
	}
	p := v.Place()
	geoOK := containsFold(p.City, q.geo.City) ||
		containsFold(p.County, q.geo.County) ||
		containsFold(p.StateName, q.geo.StateName)
	if !geoOK {
		return false
	}
	return q.category == "" || v.IssueCategory() == q.category
}

func (q IssueQuery) where(b *sqlBuilder) string {
	var clauses []string
	if q.geo.City != "" {
		clauses = append(clauses, "city ILIKE "+b.like(q.geo.City))
	}
	if q.geo.County != "" {
		clauses = append(clauses, "county ILIKE "+b.like(q.geo.County))
	}
	if q.geo.StateName != "" {
		clauses = append(clauses, "state_name ILIKE "+b.like(q.geo.StateName))
	}
	where := orAll(clauses)
	if q.category != "" {
		where += " AND category::text = " + b.arg(q.category)
	}
	return where
}

// ToSQL renders the query for Postgres, ordered by score then creation time.
func (q IssueQuery) ToSQL() (string, []any) {
	b := &sqlBuilder{}
	sql := "SELECT " + issueColumns + "\nFROM citizen_posts" +
		"\nWHERE " + q.where(b) +
		"\nORDER BY score DESC, created_at DESC"
	sql += b.limit(q.limit)
	return sql, b.args
}

// CategoryCountSQL renders a per-category count of matching issues. The
// category refinement and limit are ignored.
func (q IssueQuery) CategoryCountSQL() (string, []any) {
	b := &sqlBuilder{}
	q.category = ""
	sql := "SELECT category::text AS category, COUNT(*) AS count\nFROM citizen_posts" +
		"\nWHERE " + q.where(b) +
		"\nGROUP BY category"
	return sql, b.args
}

// SelectIssues filters records with q, orders them and applies the limit.
func SelectIssues[V IssueView](q IssueQuery, records []V) []V {
	var out []V
	for _, r := range records {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b V) int {
		if a.Votes() != b.Votes() {
			return b.Votes() - a.Votes()
		}
		return b.Created().Compare(a.Created())
	})
	if q.limit > 0 && len(out) > q.limit {
		out = out[:q.limit]
	}
	return out
}

// CountIssueCategories counts matching records per category.
func CountIssueCategories[V IssueView](q IssueQuery, records []V) map[string]int {
	q.category = ""
	counts := make(map[string]int)
	for _, r := range records {
		if q.Match(r) {
			counts[r.IssueCategory()]++
		}
	}
	return counts
}
