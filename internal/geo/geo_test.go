package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func at(days int) *time.Time {
	t := base.AddDate(0, 0, days)
	return &t
}

func source(id string, level domain.JurisdictionLevel, name string, tags ...string) *domain.SourceRecord {
	return &domain.SourceRecord{
		ID:           id,
		Title:        "source " + id,
		Tags:         tags,
		CreatedAt:    base,
		Jurisdiction: domain.Jurisdiction{ID: "j-" + id, Level: level, Name: name, StateName: "California"},
	}
}

func issue(id, category, city, county string, score int) *domain.CitizenIssue {
	return &domain.CitizenIssue{
		ID: id, Title: "issue " + id, Category: category,
		City: city, County: county, StateName: "California",
		Score: score, CreatedAt: base,
	}
}

func TestNormalizeCounty(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		"  ":                 "",
		"Los Angeles":        "Los Angeles County",
		"Los Angeles County": "Los Angeles County",
		"los angeles county": "los angeles county",
		" Orange ":           "Orange County",
		"Kings COUNTY":       "Kings COUNTY",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCounty(in), in)
	}
}

func TestEmptyGeoMatchesNothing(t *testing.T) {
	sq := Sources(domain.GeoQuery{City: "  "})
	iq := Issues(domain.GeoQuery{})

	assert.True(t, sq.Empty())
	assert.True(t, iq.Empty())
	assert.False(t, sq.Match(source("1", domain.LevelCity, "Los Angeles")))
	assert.False(t, iq.Match(issue("1", "crime", "Los Angeles", "", 0)))

	sql, args := sq.ToSQL()
	assert.Contains(t, sql, "WHERE FALSE")
	assert.Empty(t, args)

	sql, args = iq.ToSQL()
	assert.Contains(t, sql, "WHERE FALSE")
	assert.Empty(t, args)
}

func TestCountyNormalizationMatchesBothForms(t *testing.T) {
	rec := source("1", domain.LevelCounty, "Los Angeles County")
	post := issue("1", "housing", "", "Los Angeles County", 0)

	for _, county := range []string{"Los Angeles", "Los Angeles County", "los angeles"} {
		g := domain.GeoQuery{County: county}
		assert.True(t, Sources(g).Match(rec), county)
		assert.True(t, Issues(g).Match(post), county)
	}
}

func TestSourceMatch(t *testing.T) {
	cityRec := source("1", domain.LevelCity, "City of Los Angeles", "housing")
	stateRec := source("2", domain.LevelState, "State Legislature", "budget")
	countyRec := source("3", domain.LevelCounty, "Los Angeles County", "crime")

	city := Sources(domain.GeoQuery{City: "los angeles"})
	assert.True(t, city.Match(cityRec))
	assert.False(t, city.Match(countyRec), "city names only match city jurisdictions")
	assert.False(t, city.Tagged("crime").Match(cityRec))
	assert.True(t, city.Tagged("housing").Match(cityRec))

	state := Sources(domain.GeoQuery{StateName: "california"})
	assert.True(t, state.Match(stateRec), "state_name field matches")
	assert.False(t, state.Match(cityRec))
}

func TestIssueMatchIsOred(t *testing.T) {
	q := Issues(domain.GeoQuery{City: "Pasadena", StateName: "California"})
	assert.True(t, q.Match(issue("1", "crime", "Fresno", "", 0)))
	assert.True(t, q.InCategory("crime").Match(issue("2", "crime", "Pasadena", "", 0)))
	assert.False(t, q.InCategory("crime").Match(issue("3", "health", "Pasadena", "", 0)))
}

func TestSourceToSQL(t *testing.T) {
	q := Sources(domain.GeoQuery{City: "Los Angeles", County: "Kern", StateName: "California"}).Tagged("crime").Limit(2)
	sql, args := q.ToSQL()

	assert.Contains(t, sql, "(j.level = 'city' AND j.name ILIKE '%' || $1 || '%')")
	assert.Contains(t, sql, "(j.level = 'county' AND j.name ILIKE '%' || $2 || '%')")
	assert.Contains(t, sql, "(j.level = 'state' AND (j.name ILIKE '%' || $3 || '%' OR j.state_name ILIKE '%' || $3 || '%'))")
	assert.Contains(t, sql, "AND $4 = ANY(s.tags)")
	assert.Contains(t, sql, "ORDER BY s.meeting_datetime DESC NULLS LAST, s.created_at DESC")
	assert.Contains(t, sql, "LIMIT $5")
	assert.Equal(t, []any{"Los Angeles", "Kern County", "California", "crime", 2}, args)
}

func TestIssueToSQL(t *testing.T) {
	sql, args := Issues(domain.GeoQuery{City: "100%_Town"}).InCategory("housing").ToSQL()

	assert.Contains(t, sql, "WHERE (city ILIKE '%' || $1 || '%') AND category::text = $2")
	assert.Contains(t, sql, "ORDER BY score DESC, created_at DESC")
	assert.NotContains(t, sql, "LIMIT")
	assert.Equal(t, []any{`100\%\_Town`, "housing"}, args)
}

func TestCountSQLIgnoresRefinements(t *testing.T) {
	sql, args := Sources(domain.GeoQuery{City: "Austin"}).Tagged("crime").Limit(3).TagCountSQL()
	assert.Contains(t, sql, "unnest(s.tags)")
	assert.Contains(t, sql, "GROUP BY t.tag")
	assert.Equal(t, []any{"Austin"}, args)

	sql, args = Issues(domain.GeoQuery{City: "Austin"}).InCategory("crime").CategoryCountSQL()
	assert.Contains(t, sql, "GROUP BY category")
	assert.Equal(t, []any{"Austin"}, args)
}

func TestSelectSourcesOrdering(t *testing.T) {
	undatedNew := source("undated-new", domain.LevelCity, "Los Angeles", "crime")
	undatedNew.CreatedAt = base.Add(time.Hour)
	undatedOld := source("undated-old", domain.LevelCity, "Los Angeles", "crime")
	older := source("older", domain.LevelCity, "Los Angeles", "crime")
	older.MeetingDate = at(-3)
	newer := source("newer", domain.LevelCity, "Los Angeles", "crime")
	newer.MeetingDate = at(2)
	other := source("other", domain.LevelCity, "Los Angeles", "housing")

	records := []*domain.SourceRecord{undatedOld, older, other, undatedNew, newer}
	q := Sources(domain.GeoQuery{City: "Los Angeles"}).Tagged("crime")

	got := SelectSources(q, records)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"newer", "older", "undated-new", "undated-old"}, ids)

	assert.Len(t, SelectSources(q.Limit(2), records), 2)
}

func TestSelectIssuesOrdering(t *testing.T) {
	a := issue("a", "crime", "Austin", "", 3)
	b := issue("b", "crime", "Austin", "", 7)
	c := issue("c", "crime", "Austin", "", 3)
	c.CreatedAt = base.Add(time.Minute)

	got := SelectIssues(Issues(domain.GeoQuery{City: "austin"}), []*domain.CitizenIssue{a, b, c})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestCounts(t *testing.T) {
	records := []*domain.SourceRecord{
		source("1", domain.LevelCity, "Austin", "crime", "crime", "housing"),
		source("2", domain.LevelCity, "Austin", "crime"),
		source("3", domain.LevelCity, "Dallas", "crime"),
	}
	q := Sources(domain.GeoQuery{City: "Austin"})
	assert.Equal(t, map[string]int{"crime": 2, "housing": 1}, CountSourceTags(q.Tagged("housing"), records))

	issues := []*domain.CitizenIssue{
		issue("1", "transport", "Austin", "", 0),
		issue("2", "transport", "Austin", "", 0),
		issue("3", "health", "Dallas", "", 0),
	}
	assert.Equal(t, map[string]int{"transport": 2}, CountIssueCategories(Issues(domain.GeoQuery{City: "Austin"}), issues))
}

func TestIssueCategoryComparedExactly(t *testing.T) {
	issues := []*domain.CitizenIssue{
		issue("1", "transport", "Austin", "", 0),
		issue("2", " transport", "Austin", "", 0),
	}
	q := Issues(domain.GeoQuery{City: "Austin"})

	assert.Equal(t, map[string]int{"transport": 1, " transport": 1}, CountIssueCategories(q, issues))

	selected := SelectIssues(q.InCategory("transport"), issues)
	require.Len(t, selected, 1)
	assert.Equal(t, "1", selected[0].ID)

	sql, args := q.InCategory("transport").ToSQL()
	assert.Contains(t, sql, "category::text = $")
	assert.Contains(t, args, "transport")
}
