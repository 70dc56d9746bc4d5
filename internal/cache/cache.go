// Package cache stores recognized OCR text so repeated runs over the same
// flyers skip Tesseract.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from the OCR settings and the encoded image bytes.
// Identical pixels recognized with identical settings share a key.
func Key(language string, pageSegMode int, image []byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00", language, pageSegMode)
	h.Write(image)
	return "flyerdates:v1:" + hex.EncodeToString(h.Sum(nil))
}
