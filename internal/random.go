package internal

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// NewOTPCode returns a uniformly random six-digit code in [100000, 999999].
// The lower bound excludes leading zeros, so every code is exactly six
// characters long.
func NewOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(otpMin+n.Int64(), 10), nil
}
