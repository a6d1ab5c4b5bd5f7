package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewOTP returns a six-digit numeric one-time code generated from
// crypto/rand. Leading zeros are preserved ("004217" is a valid code).
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
