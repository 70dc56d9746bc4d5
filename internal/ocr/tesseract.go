package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"golang.org/x/time/rate"

	"github.com/ironsheep/flyer-dates/internal/cache"
)

// Config holds Tesseract settings.
type Config struct {
	// Language is the Tesseract language code, "eng" when empty.
	Language string

	// TessdataPrefix overrides the tessdata directory when non-empty.
	TessdataPrefix string

	// PageSegMode is the Tesseract page segmentation mode. Zero keeps the
	// Tesseract default.
	PageSegMode int

	// RateLimit is the maximum number of Tesseract calls per second. Zero or
	// less disables limiting.
	RateLimit float64

	// Burst is the limiter burst size, 1 when unset.
	Burst int
}

// Engine recognizes text in images. It is safe for concurrent use; every
// call creates its own Tesseract client.
type Engine struct {
	cfg      Config
	cache    cache.Cache
	cacheTTL time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger

	// recognize performs OCR on PNG bytes. Replaced in tests.
	recognize func(cfg Config, data []byte) (string, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache stores recognized text in c for ttl. A zero ttl uses the cache
// default.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a Tesseract-backed engine.
func NewEngine(cfg Config, opts ...Option) *Engine {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	e := &Engine{
		cfg:       cfg,
		logger:    slog.Default(),
		recognize: tesseractText,
	}
	if cfg.RateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecognizeText returns the text Tesseract finds in img.
//
// The image is encoded to PNG, looked up in the cache when one is configured,
// and otherwise recognized after waiting for the rate limiter. The returned
// text is exactly what Tesseract produced, including trailing newlines.
func (e *Engine) RecognizeText(ctx context.Context, img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}

	var key string
	if e.cache != nil {
		key = cache.Key(e.cfg.Language, e.cfg.PageSegMode, data)
		if text, ok := e.cache.Get(key); ok {
			e.logger.Debug("ocr cache hit", "key", key[len(key)-12:])
			return string(text), nil
		}
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	text, err := e.recognize(e.cfg, data)
	if err != nil {
		return "", err
	}
	e.logger.Debug("ocr complete",
		"bytes", len(data),
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if e.cache != nil {
		if err := e.cache.Set(key, []byte(text), e.cacheTTL); err != nil {
			e.logger.Warn("ocr cache write failed", "error", err)
		}
	}
	return text, nil
}

// EncodePNG encodes img as PNG bytes for Tesseract.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// tesseractText runs Tesseract over PNG bytes with a fresh client.
func tesseractText(cfg Config, data []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(cfg.Language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if cfg.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
			return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// OCRInfo contains information about the OCR subsystem.
type OCRInfo struct {
	Available bool   `json:"available" yaml:"available"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Backend   string `json:"backend" yaml:"backend"`
	Language  string `json:"language" yaml:"language"`
}

// Info reports the Tesseract version linked into the binary.
func (e *Engine) Info() OCRInfo {
	client := gosseract.NewClient()
	defer client.Close()

	version := client.Version()
	return OCRInfo{
		Available: version != "",
		Version:   version,
		Backend:   "gosseract",
		Language:  e.cfg.Language,
	}
}
