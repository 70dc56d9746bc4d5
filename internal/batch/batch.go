// Package batch runs date extraction over a directory of flyer images.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ironsheep/flyer-dates/internal/extract"
	"github.com/ironsheep/flyer-dates/internal/imaging"
)

// ErrNoImages is returned when a run has nothing to process.
var ErrNoImages = errors.New("no images found")

// Extractor runs one extraction over one image.
type Extractor interface {
	Extract(ctx context.Context, id string, img image.Image) (*extract.Result, error)
}

// Source is one image to process. When Image is nil the file at Path is
// loaded.
type Source struct {
	ID    string
	Path  string
	Image image.Image
}

// Item is the outcome for one source. Exactly one of Result and Err is set.
type Item struct {
	Index  int
	Source Source
	Info   *imaging.ImageInfo
	Result *extract.Result
	Err    error
}

// GetError returns the error from the item
func (i *Item) GetError() error {
	return i.Err
}

// Stats summarizes a run.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Options controls how a Driver processes images.
type Options struct {
	// Workers is the number of images processed concurrently. Values below
	// two process images one at a time.
	Workers int

	// FailFast stops the run at the first failed image.
	FailFast bool

	// Extensions limits directory discovery, defaulting to
	// imaging.SupportedExtensions.
	Extensions []string

	// SkipHidden ignores dot files during discovery.
	SkipHidden bool
}

// Driver processes batches of images.
type Driver struct {
	extractor Extractor
	images    *imaging.ImageCache
	opts      Options
	logger    *slog.Logger

	mu       sync.Mutex
	progress io.Writer
}

// NewDriver creates a driver. A nil logger uses slog.Default().
func NewDriver(e Extractor, opts Options, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		extractor: e,
		images:    imaging.NewImageCache(),
		opts:      opts,
		logger:    logger,
		progress:  io.Discard,
	}
}

// SetProgress directs per-image progress lines to w.
func (d *Driver) SetProgress(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	d.mu.Lock()
	d.progress = w
	d.mu.Unlock()
}

// Discover lists the images directly inside dir, sorted by name. Sub
// directories are not searched.
func Discover(dir string, exts []string, skipHidden bool) ([]Source, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("input directory is required")
	}

	allowed := map[string]struct{}{}
	if len(exts) == 0 {
		exts = imaging.SupportedExtensions
	}
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			allowed[e] = struct{}{}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var sources []Source
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if skipHidden && strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if _, ok := allowed[ext]; !ok {
			continue
		}
		sources = append(sources, Source{ID: name, Path: filepath.Join(dir, name)})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })
	return sources, nil
}

// RunDir discovers the images in dir and processes them.
func (d *Driver) RunDir(ctx context.Context, dir string) ([]*Item, Stats, error) {
	sources, err := Discover(dir, d.opts.Extensions, d.opts.SkipHidden)
	if err != nil {
		return nil, Stats{}, err
	}
	return d.Run(ctx, sources)
}

// Run processes sources and returns one item per processed source, in the
// order given. Per-image failures are recorded on the item; with FailFast
// the first failure stops the run and is also returned.
func (d *Driver) Run(ctx context.Context, sources []Source) ([]*Item, Stats, error) {
	if len(sources) == 0 {
		return nil, Stats{}, ErrNoImages
	}

	start := time.Now()
	var (
		items []*Item
		err   error
	)
	if d.opts.Workers > 1 {
		items, err = d.runPool(ctx, sources)
	} else {
		items, err = d.runSequential(ctx, sources)
	}

	stats := Stats{Total: len(items), Duration: time.Since(start)}
	for _, it := range items {
		if it.Err != nil {
			stats.Failed++
		} else {
			stats.Succeeded++
		}
	}

	d.logger.Info("batch complete",
		"total", stats.Total,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"duration_ms", stats.Duration.Milliseconds(),
	)
	return items, stats, err
}

func (d *Driver) runSequential(ctx context.Context, sources []Source) ([]*Item, error) {
	items := make([]*Item, 0, len(sources))
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return items, err
		}
		it := d.process(ctx, i, src)
		items = append(items, it)
		if it.Err != nil && d.opts.FailFast {
			return items, it.Err
		}
	}
	return items, nil
}

// imageJob adapts one source to the worker pool.
type imageJob struct {
	driver *Driver
	index  int
	source Source
}

func (j *imageJob) Execute(ctx context.Context) Result {
	return j.driver.process(ctx, j.index, j.source)
}

func (d *Driver) runPool(ctx context.Context, sources []Source) ([]*Item, error) {
	pool := NewPool(ctx, d.opts.Workers)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, src := range sources {
			if !pool.Submit(&imageJob{driver: d, index: i, source: src}) {
				return
			}
		}
	}()

	var (
		items    []*Item
		firstErr error
	)
	for r := range pool.Results() {
		it := r.(*Item)
		items = append(items, it)
		if it.Err != nil && d.opts.FailFast && firstErr == nil {
			firstErr = it.Err
			pool.Shutdown()
		}
	}
	pool.Shutdown()

	sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })

	if firstErr != nil {
		return items, firstErr
	}
	return items, ctx.Err()
}

// process loads and extracts one source.
func (d *Driver) process(ctx context.Context, index int, src Source) *Item {
	it := &Item{Index: index, Source: src}
	if src.ID == "" {
		src.ID = filepath.Base(src.Path)
		it.Source.ID = src.ID
	}

	img := src.Image
	if img == nil {
		info, err := imaging.LoadImageInfo(d.images, src.Path)
		if err != nil {
			it.Err = fmt.Errorf("%s: %w", src.ID, err)
			d.report(it)
			return it
		}
		defer d.images.Evict(src.Path)
		it.Info = info
		loaded, err := d.images.Load(src.Path)
		if err != nil {
			it.Err = fmt.Errorf("%s: %w", src.ID, err)
			d.report(it)
			return it
		}
		img = loaded
	}

	res, err := d.extractor.Extract(ctx, src.ID, img)
	if err != nil {
		it.Err = err
	} else {
		it.Result = res
	}
	d.report(it)
	return it
}

func (d *Driver) report(it *Item) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if it.Err != nil {
		d.logger.Warn("extraction failed", "image", it.Source.ID, "error", it.Err)
		fmt.Fprintf(d.progress, "✗ %s: %v\n", it.Source.ID, it.Err)
		return
	}
	c := it.Result.Components
	fmt.Fprintf(d.progress, "✓ %s (day %d, date %d, month %d, year %d)\n",
		it.Source.ID, len(c.Day), len(c.Date), len(c.Month), len(c.Year))
}
