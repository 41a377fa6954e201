// internal/daily/daily.go
//
// Package daily derives the shared "deal of the day": every player who asks
// for a daily game on the same UTC date gets the same cards in the same order.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDateKey is the inverse of DateKey.
func ParseDateKey(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// Seed returns a deterministic shuffle seed for a date using HMAC(salt, YYYY-MM-DD).
// Without the salt the day's layout cannot be precomputed.
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes are plenty for a math/rand source
	return int64(binary.BigEndian.Uint64(sum[:8]) >> 1)
}

// Rand returns a source seeded for the date.
func Rand(date time.Time, salt string) *rand.Rand {
	return rand.New(rand.NewSource(Seed(date, salt)))
}
