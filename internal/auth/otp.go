package auth

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP returns a 6-digit numeric code drawn uniformly from
// [100000, 999999]. The caller persists the value and its expiry.
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10)
}
