package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
)

// Fixed threshold parameters for flyer variants.
const (
	DefaultCutoff uint8 = 127
	DefaultMax    uint8 = 255
)

// ThresholdKind selects how pixels above and below the cutoff are rewritten.
type ThresholdKind int

const (
	Binary ThresholdKind = iota
	BinaryInv
	Trunc
	ToZero
	ToZeroInv
)

// ThresholdKinds lists every kind in variant order.
var ThresholdKinds = []ThresholdKind{Binary, BinaryInv, Trunc, ToZero, ToZeroInv}

func (k ThresholdKind) String() string {
	switch k {
	case Binary:
		return "binary"
	case BinaryInv:
		return "binary_inv"
	case Trunc:
		return "trunc"
	case ToZero:
		return "tozero"
	case ToZeroInv:
		return "tozero_inv"
	default:
		return fmt.Sprintf("threshold(%d)", int(k))
	}
}

// Threshold returns a new grayscale-valued image with kind applied to every
// pixel of img.
//
// Parameters:
//   - img: Source image. Color images are converted to grayscale first.
//   - kind: The threshold rule to apply.
//   - cutoff: Pixels strictly greater than cutoff count as "above".
//   - maxValue: Value written by Binary and BinaryInv for selected pixels.
//
// The result is an *image.RGBA whose R, G and B channels carry the same
// value. An unknown kind returns an unmodified grayscale copy.
func Threshold(img image.Image, kind ThresholdKind, cutoff, maxValue uint8) image.Image {
	rule := thresholdRule(kind, cutoff, maxValue)
	return adjust.Apply(Grayscale(img), func(c color.RGBA) color.RGBA {
		v := rule(c.R)
		return color.RGBA{R: v, G: v, B: v, A: c.A}
	})
}

func thresholdRule(kind ThresholdKind, cutoff, maxValue uint8) func(uint8) uint8 {
	switch kind {
	case Binary:
		return func(v uint8) uint8 {
			if v > cutoff {
				return maxValue
			}
			return 0
		}
	case BinaryInv:
		return func(v uint8) uint8 {
			if v > cutoff {
				return 0
			}
			return maxValue
		}
	case Trunc:
		return func(v uint8) uint8 {
			if v > cutoff {
				return cutoff
			}
			return v
		}
	case ToZero:
		return func(v uint8) uint8 {
			if v > cutoff {
				return v
			}
			return 0
		}
	case ToZeroInv:
		return func(v uint8) uint8 {
			if v > cutoff {
				return 0
			}
			return v
		}
	default:
		return func(v uint8) uint8 { return v }
	}
}

// Grayscale returns img as 8-bit grayscale. An *image.Gray is returned as is.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	rgba := effect.Grayscale(img)
	b := rgba.Bounds()
	gray := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+b.Dx()*4]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return gray
}
