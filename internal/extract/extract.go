// Package extract runs one date extraction over one flyer image.
package extract

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/ironsheep/flyer-dates/internal/corpus"
	"github.com/ironsheep/flyer-dates/internal/dates"
)

// VariantText is the raw OCR output for one variant.
type VariantText struct {
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title" yaml:"title"`
	Text  string `json:"text" yaml:"text"`
}

// Result is the outcome of one extraction run.
type Result struct {
	Image      string           `json:"image" yaml:"image"`
	Components dates.Components `json:"components" yaml:"components"`
	Variants   []VariantText    `json:"variants,omitempty" yaml:"variants,omitempty"`
	Duration   time.Duration    `json:"duration_ns" yaml:"duration_ns"`
}

// Extractor turns an image into candidate date components.
type Extractor struct {
	builder *corpus.Builder
	logger  *slog.Logger
}

// New creates an extractor that recognizes text with r.
func New(r corpus.Recognizer, logger *slog.Logger) *Extractor {
	return NewWithBuilder(corpus.NewBuilder(r), logger)
}

// NewWithBuilder creates an extractor around an existing corpus builder.
func NewWithBuilder(b *corpus.Builder, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{builder: b, logger: logger}
}

// Extract builds the OCR corpus for img and scans it. Each call starts with
// empty candidate sets.
func (e *Extractor) Extract(ctx context.Context, id string, img image.Image) (*Result, error) {
	start := time.Now()

	c, err := e.builder.Build(ctx, id, img)
	if err != nil {
		return nil, err
	}

	res := Scan(c)
	res.Duration = time.Since(start)

	e.logger.Debug("extracted",
		"image", id,
		"days", len(res.Components.Day),
		"dates", len(res.Components.Date),
		"months", len(res.Components.Month),
		"years", len(res.Components.Year),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// Scan runs the detectors over an already built corpus.
func Scan(c *corpus.Corpus) *Result {
	cands := dates.NewCandidates()
	cands.ScanLines(c.Lines())

	variants := make([]VariantText, 0, len(corpus.Variants))
	for _, v := range corpus.Variants {
		variants = append(variants, VariantText{
			Name:  v.String(),
			Title: v.Title(),
			Text:  c.Text(v),
		})
	}

	return &Result{
		Image:      c.ID(),
		Components: cands.Components(),
		Variants:   variants,
	}
}
