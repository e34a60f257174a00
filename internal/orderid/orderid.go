// Package orderid generates the human-readable order references shown to
// customers, e.g. 10122025113023ABC123.
package orderid

import (
	"crypto/rand"
	"io"
	"math/big"
	"time"
)

const (
	alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffixLength = 6
	// DDMMYYYY + HHMMSS
	timestampLayout = "02012006150405"
)

// Generator builds order ids from the local wall clock and a random suffix.
type Generator struct {
	nowFunc func() time.Time
	random  io.Reader
}

// NewGenerator returns a Generator using time.Now and crypto/rand.
func NewGenerator() *Generator {
	return &Generator{nowFunc: time.Now, random: rand.Reader}
}

// New returns a fresh order id. A failing random source degrades to a
// timestamp-derived suffix rather than returning an error.
func (g *Generator) New() string {
	now := g.nowFunc()
	return now.Format(timestampLayout) + g.suffix(now)
}

func (g *Generator) suffix(now time.Time) string {
	buf := make([]byte, suffixLength)
	limit := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(g.random, limit)
		if err != nil {
			seed := now.UnixNano() >> (i * 5)
			buf[i] = alphabet[int(seed&0x7fffffff)%len(alphabet)]
			continue
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf)
}

// Valid reports whether s has the shape of a generated order id.
func Valid(s string) bool {
	if len(s) != len(timestampLayout)+suffixLength {
		return false
	}
	if _, err := time.ParseInLocation(timestampLayout, s[:len(timestampLayout)], time.Local); err != nil {
		return false
	}
	for i := len(timestampLayout); i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
