// Package imaging loads flyer images and produces the thresholded variants
// handed to OCR.
//
// Images are decoded once, oriented according to their EXIF data, converted
// to 8-bit grayscale and kept in an ImageCache. Threshold then derives the
// five binarized variants used alongside the untransformed image.
//
// # Threshold Kinds
//
// Every kind compares a pixel value v against a cutoff (127 for flyers) and a
// maximum (255):
//
//   - Binary:    v > cutoff ? max : 0
//   - BinaryInv: v > cutoff ? 0 : max
//   - Trunc:     v > cutoff ? cutoff : v
//   - ToZero:    v > cutoff ? v : 0
//   - ToZeroInv: v > cutoff ? 0 : v
//
// # Supported Formats
//
// PNG, JPEG, GIF, BMP, TIFF and WebP are decoded. Format detection for
// ImageInfo is based on the file extension.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Threshold never modifies its input
// and can be called concurrently on the same image.
package imaging
