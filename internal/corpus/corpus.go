// Package corpus builds the multi-variant OCR text for one flyer image.
//
// Each image is recognized six times: once as-is and once per fixed
// threshold. The six texts are joined in a fixed order into a single
// lowercased corpus that the date detectors scan line by line.
package corpus

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/flyer-dates/internal/dates"
	"github.com/ironsheep/flyer-dates/internal/imaging"
)

// Variant identifies one of the six images fed to OCR.
type Variant int

const (
	Original Variant = iota
	BinaryVariant
	BinaryInvVariant
	TruncVariant
	ToZeroVariant
	ToZeroInvVariant
)

// Variants lists every variant in corpus order.
var Variants = []Variant{
	Original,
	BinaryVariant,
	BinaryInvVariant,
	TruncVariant,
	ToZeroVariant,
	ToZeroInvVariant,
}

var variantTitles = [...]string{
	"Original Image",
	"BINARY/thresh1",
	"BINARY_INV/thresh2",
	"TRUNC/thresh3",
	"TOZERO/thresh4",
	"TOZERO_INV/thresh5",
}

var variantNames = [...]string{
	"original",
	"binary",
	"binary_inv",
	"trunc",
	"tozero",
	"tozero_inv",
}

// Title returns the display title used in reports.
func (v Variant) Title() string {
	if v < 0 || int(v) >= len(variantTitles) {
		return fmt.Sprintf("Variant %d", int(v))
	}
	return variantTitles[v]
}

// String returns the short machine name, e.g. "binary_inv".
func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("variant(%d)", int(v))
	}
	return variantNames[v]
}

// thresholdKind maps a non-original variant to its threshold rule.
func (v Variant) thresholdKind() imaging.ThresholdKind {
	return imaging.ThresholdKinds[v-1]
}

// Recognizer turns an image into text.
type Recognizer interface {
	RecognizeText(ctx context.Context, img image.Image) (string, error)
}

// ThresholdFunc produces a thresholded copy of img.
type ThresholdFunc func(img image.Image, kind imaging.ThresholdKind, cutoff, maxValue uint8) image.Image

// VariantError reports a recognition failure for one variant of one image.
type VariantError struct {
	Image   string
	Variant Variant
	Err     error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Image, e.Variant.Title(), e.Err)
}

func (e *VariantError) Unwrap() error {
	return e.Err
}

// Builder creates corpora using a recognizer and a threshold function.
type Builder struct {
	recognizer Recognizer
	threshold  ThresholdFunc
}

// NewBuilder returns a builder that thresholds with imaging.Threshold.
func NewBuilder(r Recognizer) *Builder {
	return &Builder{recognizer: r, threshold: imaging.Threshold}
}

// WithThreshold replaces the threshold function and returns b.
func (b *Builder) WithThreshold(fn ThresholdFunc) *Builder {
	if fn != nil {
		b.threshold = fn
	}
	return b
}

// Build recognizes img in all six variants, in corpus order. Color input is
// converted to grayscale first, so the Original variant is the grayscale
// image. The first recognition failure aborts the build and is returned as a
// *VariantError.
func (b *Builder) Build(ctx context.Context, id string, img image.Image) (*Corpus, error) {
	c := &Corpus{id: id}
	gray := imaging.Grayscale(img)
	for _, v := range Variants {
		var src image.Image = gray
		if v != Original {
			src = b.threshold(gray, v.thresholdKind(), imaging.DefaultCutoff, imaging.DefaultMax)
		}
		text, err := b.recognizer.RecognizeText(ctx, src)
		if err != nil {
			return nil, &VariantError{Image: id, Variant: v, Err: err}
		}
		c.texts[v] = text
	}
	return c, nil
}

// Corpus is the immutable OCR text of one image across all variants.
type Corpus struct {
	id    string
	texts [6]string
}

// New creates a corpus from already recognized texts, given in corpus
// order. Missing texts are treated as empty.
func New(id string, texts ...string) *Corpus {
	c := &Corpus{id: id}
	copy(c.texts[:], texts)
	return c
}

// ID returns the image identifier.
func (c *Corpus) ID() string { return c.id }

// Text returns the raw OCR output for one variant.
func (c *Corpus) Text(v Variant) string {
	if v < 0 || int(v) >= len(c.texts) {
		return ""
	}
	return c.texts[v]
}

// Combined returns the six texts joined without separator and lowercased.
func (c *Corpus) Combined() string {
	return strings.ToLower(strings.Join(c.texts[:], ""))
}

// Lines splits the combined text on line feeds. Empty lines are kept.
func (c *Corpus) Lines() []string {
	return dates.SplitLines(strings.Join(c.texts[:], ""))
}
