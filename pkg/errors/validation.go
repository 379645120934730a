package errors

import (
	"math"
	"strings"
)

// MaxKeywordLength is the longest keyword a FITS header card can carry
// without the HIERARCH convention.
const MaxKeywordLength = 8

// ValidateKeyword checks that key is usable as a FITS header keyword:
// non-empty, at most eight characters, and drawn from A-Z, 0-9, '-' and '_'.
func ValidateKeyword(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKeyword, "keyword cannot be empty")
	}
	if len(key) > MaxKeywordLength {
		return New(ErrCodeInvalidKeyword, "keyword %q too long (max %d characters)", key, MaxKeywordLength)
	}
	if i := strings.IndexFunc(key, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_')
	}); i >= 0 {
		return New(ErrCodeInvalidKeyword, "keyword %q contains invalid character %q", key, key[i])
	}
	return nil
}

// ValidateDims rejects image dimensions that cannot hold a pixel.
func ValidateDims(naxis1, naxis2 int) error {
	if naxis1 <= 0 || naxis2 <= 0 {
		return New(ErrCodeInvalidShape, "image dimensions must be positive, got %dx%d", naxis1, naxis2)
	}
	return nil
}

// ValidatePixelScale rejects pixel scales that are not strictly positive
// and finite.
func ValidatePixelScale(scale float64) error {
	if !(scale > 0) || math.IsInf(scale, 1) {
		return New(ErrCodeInvalidScale, "pixel scale must be positive, got %v", scale)
	}
	return nil
}
