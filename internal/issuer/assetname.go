package issuer

import (
	"fmt"
	"regexp"
	"time"
)

// timestampDigits is the length of a millisecond Unix timestamp until the
// year 2286.
const timestampDigits = 13

// maxNamePrefix leaves room in the 32-byte asset name for the hyphen and
// timestamp suffix.
const maxNamePrefix = 32 - timestampDigits - 1

var nonAlphaNum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// AssetLabel derives the on-chain asset name from a student name: strip
// non-alphanumerics, truncate, then append a millisecond timestamp. The
// timestamp makes repeated mints for the same name unique; the truncation
// keeps the UTF-8 encoding within the protocol's 32-byte ceiling.
func AssetLabel(studentName string, now time.Time) string {
	clean := nonAlphaNum.ReplaceAllString(studentName, "")
	if len(clean) > maxNamePrefix {
		clean = clean[:maxNamePrefix]
	}
	return fmt.Sprintf("%s-%d", clean, now.UnixMilli())
}
