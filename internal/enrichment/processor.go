package enrichment

import (
	"context"
	"time"

	"github.com/StreetLamp05/glassgov-be/internal/classifier"
	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

// Enrichment is the stored outcome of one job.
type Enrichment struct {
	JobID       string                       `json:"job_id"`
	Text        string                       `json:"text"`
	Model       string                       `json:"model"`
	Result      *domain.ClassificationResult `json:"result"`
	SubmittedAt time.Time                    `json:"submitted_at"`
	CompletedAt time.Time                    `json:"completed_at"`
}

// Sink receives finished enrichments. No consumer reads them back yet.
type Sink interface {
	Store(ctx context.Context, e Enrichment) error
}

// Analyzer classifies text.
type Analyzer interface {
	Analyze(ctx context.Context, text string, opts classifier.Options) *domain.ClassificationResult
}

// Processor re-classifies job text with a stronger analyzer and stores the result.
type Processor struct {
	analyzer Analyzer
	sink     Sink
	model    string
	opts     classifier.Options
}

// NewProcessor builds a processor. model names the scorer for the stored record.
func NewProcessor(analyzer Analyzer, sink Sink, model string) *Processor {
	opts := classifier.DefaultOptions()
	opts.Debug = true
	return &Processor{analyzer: analyzer, sink: sink, model: model, opts: opts}
}

// Handle implements Handler.
func (p *Processor) Handle(ctx context.Context, job Job) error {
	res := p.analyzer.Analyze(ctx, job.Text, p.opts)
	return p.sink.Store(ctx, Enrichment{
		JobID:       job.ID,
		Text:        job.Text,
		Model:       p.model,
		Result:      res,
		SubmittedAt: job.SubmittedAt,
		CompletedAt: time.Now(),
	})
}
