package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderNo returns yyyyMMddHHmmss followed by six random digits.
// Collisions are possible but practically negligible.
func GenerateOrderNo(now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 1000000)
	}

	return fmt.Sprintf("%s%06d", now.Format("20060102150405"), n.Int64())
}
