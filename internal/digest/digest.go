// Package digest computes document fingerprints: a byte-level SHA-256 of an
// uploaded file and, for scanned documents, a normalization-stable hash of
// extracted text.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// HexLen is the length of a hex-encoded digest.
const HexLen = 64

// ErrEmptyContent is returned when text normalization yields nothing to
// hash, which prevents blank or unreadable scans from masquerading as valid
// fingerprints.
var ErrEmptyContent = errors.New("no text content to hash")

// Bytes streams r into SHA-256 and returns the lowercase hex digest.
func Bytes(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Text normalizes raw extracted text and hashes the result. Two scans of the
// same physical document differ in case, whitespace and stray punctuation,
// so raw OCR output is never hashed directly.
func Text(rawText string) (string, error) {
	normalized := Normalize(rawText)
	if normalized == "" {
		return "", ErrEmptyContent
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:]), nil
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonAlphaNum   = regexp.MustCompile(`[^a-z0-9 ]`)
)

// Normalize applies the canonical text pipeline, in order: lowercase,
// collapse all whitespace runs to a single space, strip everything but
// lowercase letters, digits and spaces, trim the ends. The step order is
// part of the contract; re-hashing an already-committed document with a
// different order would produce a different fingerprint.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = nonAlphaNum.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ValidHex reports whether s is a well-formed digest: exactly 64 lowercase
// hex characters. Anything else is a data-integrity error, not a tolerated
// variant.
func ValidHex(s string) bool {
	if len(s) != HexLen {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
