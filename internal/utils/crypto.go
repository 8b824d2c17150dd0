// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
)

const tempPasswordCharset = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%"

// GenerateTempPassword returns a random initial password handed to the
// provisioning API. Ambiguous characters (0/O, 1/l/I) are excluded because
// the password is relayed to users over the phone during onboarding.
func GenerateTempPassword(length int) (string, error) {
	if length <= 0 {
		length = 12
	}

	buf := make([]byte, length)
	max := big.NewInt(int64(len(tempPasswordCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = tempPasswordCharset[n.Int64()]
	}

	return string(buf), nil
}
