package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderNumber builds a human-readable order number from the
// checkout time plus a 4-digit random suffix, e.g. ORD-202601151030-4821.
// Uniqueness is probabilistic; collisions within the same minute are
// caught by the index on orders.order_number.
func GenerateOrderNumber(now time.Time) string {
	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		return fmt.Sprintf("ORD-%s-%04d", now.Format("200601021504"), now.Nanosecond()%10000)
	}
	return fmt.Sprintf("ORD-%s-%04d", now.Format("200601021504"), suffix.Int64())
}
