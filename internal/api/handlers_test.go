package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StreetLamp05/glassgov-be/internal/classifier"
	"github.com/StreetLamp05/glassgov-be/internal/database"
	"github.com/StreetLamp05/glassgov-be/internal/discover"
	"github.com/StreetLamp05/glassgov-be/internal/domain"
	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
	th "github.com/StreetLamp05/glassgov-be/internal/testhelpers"
)

type memoryRules struct {
	mu     sync.Mutex
	nextID int
	rules  map[int]domain.ClassificationRule
}

func newMemoryRules() *memoryRules {
	return &memoryRules{nextID: 1, rules: make(map[int]domain.ClassificationRule)}
}

func (m *memoryRules) Create(_ context.Context, rule *domain.ClassificationRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rule.ID = m.nextID
	m.nextID++
	m.rules[rule.ID] = *rule
	return nil
}

func (m *memoryRules) List(_ context.Context, enabledOnly bool) ([]domain.ClassificationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ClassificationRule, 0, len(m.rules))
	for id := 1; id < m.nextID; id++ {
		r, ok := m.rules[id]
		if !ok || (enabledOnly && !r.Enabled) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryRules) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[id]; !ok {
		return database.ErrRuleNotFound
	}
	delete(m.rules, id)
	return nil
}

func (m *memoryRules) SetEnabled(_ context.Context, id int, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok {
		return database.ErrRuleNotFound
	}
	r.Enabled = enabled
	m.rules[id] = r
	return nil
}

type testServer struct {
	router  *gin.Engine
	matcher *classifier.RuleMatcher
	rules   *memoryRules
}

func newTestServer(t *testing.T, records discover.RecordSource, withRules bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tp := telemetry.NewProviderWithRegistry(prometheus.NewRegistry())
	matcher := classifier.NewRuleMatcher(nil, nil)
	engine := classifier.NewEngine(matcher, nil, classifier.NewEntityExtractor(), nil, tp)
	disc := discover.NewEngine(records, engine, nil, discover.Config{}, nil, tp)

	ts := &testServer{matcher: matcher}
	var store RuleStore
	var reloader RuleReloader
	if withRules {
		ts.rules = newMemoryRules()
		store = ts.rules
		reloader = classifier.NewRuleRefresher(ts.rules, matcher, 0, nil)
	}

	h := NewHandler(engine, matcher, disc, store, reloader, classifier.DefaultOptions(), nil)
	ts.router = gin.New()
	SetupRoutes(ts.router, h, tp.Handler())
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func laRecords() *database.MemoryStore {
	return database.NewMemoryStore(
		[]*domain.SourceRecord{
			th.CitySource("h1", "Los Angeles", "housing"),
			th.CitySource("h2", "Los Angeles", "housing"),
			th.CitySource("h3", "Los Angeles", "housing"),
			th.CitySource("c1", "Los Angeles", "crime"),
		},
		[]*domain.CitizenIssue{
			th.CityIssue("i1", "Los Angeles", "housing", 3),
			th.CityIssue("i2", "Los Angeles", "housing", 9),
			th.CityIssue("i3", "Los Angeles", "housing", 1),
		},
	)
}

func TestAnalyze(t *testing.T) {
	ts := newTestServer(t, laRecords(), false)

	w := ts.do(t, http.MethodPost, "/api/v1/analyze", gin.H{"text": "Two shootings near Market St, food desert nearby"})
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.ClassificationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got.Tags, "crime")
	assert.Contains(t, got.Tags, "food_access")
	assert.Contains(t, got.Entities[domain.EntityStreet], "Market St")
	require.NotEmpty(t, got.Ranked)
	assert.InDelta(t, got.Ranked[0].Score, got.Confidence, 0)
	assert.Nil(t, got.Debug)
}

func TestAnalyze_Debug(t *testing.T) {
	ts := newTestServer(t, laRecords(), false)

	w := ts.do(t, http.MethodPost, "/api/v1/analyze", gin.H{"text": "Landlord raised rent", "debug": true})
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Debug    *domain.ClassificationDebug `json:"debug"`
		RuleHits []classifier.RuleHit        `json:"rule_hits"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Debug)
	assert.Contains(t, got.Debug.RuleScores, domain.LabelHousing)
	require.NotEmpty(t, got.RuleHits)
	assert.Equal(t, domain.LabelHousing, got.RuleHits[0].Label)
}

func TestAnalyze_InvalidOptions(t *testing.T) {
	ts := newTestServer(t, laRecords(), false)

	tests := []struct {
		name string
		body gin.H
	}{
		{"threshold above one", gin.H{"text": "bus", "threshold": 1.5}},
		{"negative threshold", gin.H{"text": "bus", "threshold": -0.1}},
		{"top_k zero", gin.H{"text": "bus", "top_k": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestDiscover_ExplicitCategories(t *testing.T) {
	ts := newTestServer(t, laRecords(), false)

	w := ts.do(t, http.MethodPost, "/api/v1/discover", gin.H{
		"geo":        gin.H{"city": "Los Angeles"},
		"categories": []string{"housing", "crime"},
		"limits":     gin.H{"per_category": 2},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.DiscoverResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Sections, 2)
	assert.Equal(t, domain.LabelHousing, got.Sections[0].Category)
	assert.Equal(t, domain.LabelCrime, got.Sections[1].Category)
	for _, s := range got.Sections {
		assert.LessOrEqual(t, len(s.GovernmentActions), 2)
		assert.LessOrEqual(t, len(s.CitizenIssues), 2)
	}
	assert.Equal(t, "Los Angeles", got.Geo.City)
}

func TestDiscover_MissingGeography(t *testing.T) {
	ts := newTestServer(t, laRecords(), false)

	w := ts.do(t, http.MethodPost, "/api/v1/discover", gin.H{"message": "potholes everywhere"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"geo.city, geo.county, or geo.state_name is required"}`, w.Body.String())
}

func TestDiscover_StorageFailure(t *testing.T) {
	ts := newTestServer(t, th.FailingRecords{}, false)

	w := ts.do(t, http.MethodPost, "/api/v1/discover", gin.H{"geo": gin.H{"state_name": "California"}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), th.ErrStoreUnavailable.Error())
}

func TestLabels(t *testing.T) {
	ts := newTestServer(t, laRecords(), false)

	w := ts.do(t, http.MethodGet, "/api/v1/labels", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"labels":["food_access","road_safety","crime","housing","zoning","transport","budget","health"]}`,
		w.Body.String())
}

func TestTopics(t *testing.T) {
	ts := newTestServer(t, laRecords(), false)

	w := ts.do(t, http.MethodGet, "/api/v1/topics?category=housing&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []domain.GovernmentAction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 2)

	w = ts.do(t, http.MethodGet, "/api/v1/topics?category=weather", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/topics?limit=many", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRules_NotRegisteredWithoutStore(t *testing.T) {
	ts := newTestServer(t, laRecords(), false)

	w := ts.do(t, http.MethodGet, "/api/v1/rules", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRules_Lifecycle(t *testing.T) {
	ts := newTestServer(t, laRecords(), true)

	w := ts.do(t, http.MethodPost, "/api/v1/rules", gin.H{
		"rule_name": "snap", "label": "food_access", "keywords": []string{"snap benefits"}, "weight": 0.9,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.ClassificationRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 1, created.ID)
	assert.True(t, created.Enabled)
	assert.Equal(t, 1, ts.matcher.StoredRuleCount(), "create reloads the matcher")

	w = ts.do(t, http.MethodGet, "/api/v1/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = ts.do(t, http.MethodPatch, "/api/v1/rules/1", gin.H{"enabled": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, ts.matcher.StoredRuleCount())

	w = ts.do(t, http.MethodDelete, "/api/v1/rules/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/v1/rules/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRules_InvalidInput(t *testing.T) {
	ts := newTestServer(t, laRecords(), true)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"unknown label", http.MethodPost, "/api/v1/rules", gin.H{
			"rule_name": "x", "label": "weather", "keywords": []string{"rain"}, "weight": 0.5,
		}},
		{"weight above one", http.MethodPost, "/api/v1/rules", gin.H{
			"rule_name": "x", "label": "crime", "keywords": []string{"arson"}, "weight": 2,
		}},
		{"missing keywords", http.MethodPost, "/api/v1/rules", gin.H{"rule_name": "x", "label": "crime", "weight": 0.5}},
		{"bad id", http.MethodDelete, "/api/v1/rules/abc", nil},
		{"missing enabled", http.MethodPatch, "/api/v1/rules/1", gin.H{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Empty(t, ts.rules.rules)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, laRecords(), false)
	ts.do(t, http.MethodPost, "/api/v1/analyze", gin.H{"text": "bus late again"})

	w := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "glassgov_"), "service metrics are exported")
}
