package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	numberPrefix   = "ORD"
	suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffixLength   = 9
)

// GenerateNumber produces an order number of the form
// ORD-<millisecond epoch>-<9 uppercase alphanumerics>. Uniqueness is
// probabilistic here; the unique index on orderNumber is the real guard.
func GenerateNumber(now time.Time) string {
	buf := make([]byte, suffixLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; degrade to
		// a time-derived suffix rather than panic in a request path.
		nano := now.UnixNano()
		for i := range buf {
			buf[i] = byte(nano >> (uint(i) * 7))
		}
	}

	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}

	return fmt.Sprintf("%s-%d-%s", numberPrefix, now.UnixMilli(), buf)
}
