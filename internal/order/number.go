package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderNumber builds the public, human-traceable order identifier:
// ORD-<unix millis>-<random 0..999>. Two orders created in the same
// millisecond can collide on the random suffix; the database uniqueness
// constraint on order_number is the real guard.
func GenerateOrderNumber() string {
	millis := time.Now().UnixMilli()

	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(time.Now().UnixNano() % 1000)
	}

	return fmt.Sprintf("ORD-%d-%d", millis, n.Int64())
}
