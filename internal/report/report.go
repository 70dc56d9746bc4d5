// Package report renders extraction results.
//
// A Report gathers the per-image results of one run under a random run id.
// It can be written as JSON (checked against an embedded JSON Schema), YAML,
// plain text, an XLSX workbook, or stored in a SQLite database.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/flyer-dates/internal/batch"
	"github.com/ironsheep/flyer-dates/internal/dates"
	"github.com/ironsheep/flyer-dates/internal/extract"
	"github.com/ironsheep/flyer-dates/internal/imaging"
)

// Report is the result of one run.
type Report struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	Summary     Summary   `json:"summary" yaml:"summary"`
	Images      []Entry   `json:"images" yaml:"images"`
}

// Summary counts processed images.
type Summary struct {
	Total      int   `json:"total" yaml:"total"`
	Succeeded  int   `json:"succeeded" yaml:"succeeded"`
	Failed     int   `json:"failed" yaml:"failed"`
	DurationMS int64 `json:"duration_ms" yaml:"duration_ms"`
}

// Entry is the outcome for one image. Components is nil when extraction
// failed.
type Entry struct {
	Image      string                `json:"image" yaml:"image"`
	Path       string                `json:"path,omitempty" yaml:"path,omitempty"`
	Info       *imaging.ImageInfo    `json:"info,omitempty" yaml:"info,omitempty"`
	Components *dates.Components     `json:"components,omitempty" yaml:"components,omitempty"`
	Variants   []extract.VariantText `json:"variants,omitempty" yaml:"variants,omitempty"`
	Error      string                `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMS int64                 `json:"duration_ms" yaml:"duration_ms"`
}

// New builds a report from batch items. Variant texts are kept only when
// withVariants is set.
func New(source string, items []*batch.Item, stats batch.Stats, withVariants bool) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Summary: Summary{
			Total:      stats.Total,
			Succeeded:  stats.Succeeded,
			Failed:     stats.Failed,
			DurationMS: stats.Duration.Milliseconds(),
		},
		Images: make([]Entry, 0, len(items)),
	}

	for _, it := range items {
		e := Entry{
			Image: it.Source.ID,
			Path:  it.Source.Path,
			Info:  it.Info,
		}
		if it.Err != nil {
			e.Error = it.Err.Error()
		}
		if it.Result != nil {
			c := it.Result.Components
			e.Components = &c
			e.DurationMS = it.Result.Duration.Milliseconds()
			if withVariants {
				e.Variants = it.Result.Variants
			}
		}
		r.Images = append(r.Images, e)
	}
	return r
}

// FromResult builds a single-image report, as used by the MCP server.
func FromResult(res *extract.Result, info *imaging.ImageInfo, withVariants bool) *Report {
	item := &batch.Item{
		Source: batch.Source{ID: res.Image},
		Info:   info,
		Result: res,
	}
	stats := batch.Stats{Total: 1, Succeeded: 1, Duration: res.Duration}
	return New("", []*batch.Item{item}, stats, withVariants)
}
