package enrichment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StreetLamp05/glassgov-be/internal/classifier"
	"github.com/StreetLamp05/glassgov-be/internal/domain"
	"github.com/StreetLamp05/glassgov-be/internal/testhelpers"
)

type memorySink struct {
	mu    sync.Mutex
	items []Enrichment
	err   error
}

func (m *memorySink) Store(_ context.Context, e Enrichment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items = append(m.items, e)
	return nil
}

func TestProcessor_Handle(t *testing.T) {
	scorer := testhelpers.NewStaticScorer(map[domain.Label]float64{domain.LabelHousing: 0.93})
	engine := classifier.NewEngine(nil, scorer, classifier.NewEntityExtractor(), nil, nil)
	sink := &memorySink{}
	p := NewProcessor(engine, sink, "zero-shot")

	submitted := time.Now().Add(-time.Second)
	require.NoError(t, p.Handle(context.Background(), Job{ID: "job-1", Text: "landlord ignores mold", SubmittedAt: submitted}))

	require.Len(t, sink.items, 1)
	got := sink.items[0]
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, "zero-shot", got.Model)
	assert.Equal(t, domain.LabelHousing, got.Result.PrimaryLabel)
	require.NotNil(t, got.Result.Debug)
	assert.InDelta(t, 0.93, got.Result.Debug.SemanticScores[domain.LabelHousing], 1e-9)
	assert.True(t, got.CompletedAt.After(submitted))
	assert.Equal(t, 1, scorer.Calls())
}

func TestProcessor_SinkErrorPropagatesToPool(t *testing.T) {
	sink := &memorySink{err: errors.New("index down")}
	p := NewProcessor(classifier.NewEngine(nil, nil, nil, nil, nil), sink, "fusion")

	err := p.Handle(context.Background(), Job{ID: "x", Text: "bus"})
	require.Error(t, err)
}

func TestLogSink(t *testing.T) {
	s := NewLogSink(nil)
	assert.NoError(t, s.Store(context.Background(), Enrichment{JobID: "1"}))
	assert.NoError(t, s.Store(context.Background(), Enrichment{JobID: "2", Result: &domain.ClassificationResult{
		PrimaryLabel: domain.LabelCrime, Tags: []string{"crime"}, Confidence: 0.85,
	}}))
}
