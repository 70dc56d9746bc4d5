// Package ocr recognizes text in flyer image variants using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Images are
// encoded to PNG in memory and handed to Tesseract without temporary files.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A non-default tessdata directory can be set with Config.TessdataPrefix.
//
// # Caching
//
// An Engine built with WithCache stores recognized text keyed by the OCR
// settings and the encoded image bytes. Re-running a batch over the same
// flyers then skips Tesseract entirely for unchanged variants.
//
// # Rate Limiting
//
// Config.RateLimit caps Tesseract calls per second across all goroutines
// sharing an Engine. Cache hits are not limited.
//
// # Error Handling
//
// RecognizeText returns errors for encoding failures, Tesseract
// initialization or recognition failures, and context cancellation while
// waiting for the limiter. Nothing is retried. An image without text is not
// an error and yields an empty string.
package ocr
