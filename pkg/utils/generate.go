package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateConfirmationCode format: CAP-YYYYMMDD-XXXXXX
func GenerateConfirmationCode(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(fmt.Sprintf("generate confirmation code: %v", err))
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}

	return fmt.Sprintf("CAP-%s-%s", now.Format("20060102"), suffix)
}
