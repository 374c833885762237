// internal/daily/daily.go
//
// Deterministic word selection for the periodic challenges.
// A period (day, ISO week or month) maps to a stable key, and the key picks
// a word index via HMAC(salt, key), so every player gets the same word for
// the same period without storing it anywhere.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Period is the lifetime of one challenge word.
type Period string

const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
)

var ErrUnknownPeriod = errors.New("daily: unknown period")

// ParsePeriod accepts "day"/"daily", "week"/"weekly", "month"/"monthly".
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "day", "daily":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// PeriodKey returns the UTC key of the period containing t:
// "2006-01-02" for days, "2006-W01" (ISO week) for weeks, "2006-01" for months.
func PeriodKey(p Period, t time.Time) string {
	t = t.UTC()
	switch p {
	case Week:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case Month:
		return t.Format("2006-01")
	default:
		return DateKey(t)
	}
}

// WordIndex returns a deterministic index for a period key using HMAC(salt, key) % answersLen.
func WordIndex(key, salt string, answersLen int) int {
	if answersLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(key))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(answersLen))
}
