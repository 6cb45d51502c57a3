// Package id generates deterministic external identifiers for statement
// rows that carry no bank transaction id.
package id

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fingerprint returns a stable external id derived from the row content.
// The memo is normalized (lowercased, trimmed) so cosmetic differences
// between exports of the same transaction do not defeat deduplication.
// Ordinal disambiguates identical rows within a single file; counting
// occurrences the same way on every parse keeps re-imports idempotent.
func Fingerprint(postedOn time.Time, amount decimal.Decimal, memo string, ordinal int) string {
	normalized := strings.ToLower(strings.TrimSpace(memo))
	input := fmt.Sprintf("%s|%s|%s|%d", postedOn.Format("2006-01-02"), amount.StringFixed(2), normalized, ordinal)
	sum := sha256.Sum256([]byte(input))
	return "fp_" + hex.EncodeToString(sum[:8])
}
