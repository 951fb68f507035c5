package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
)

const (
	tokenRandomBytes = 20
	tokenMaxLength   = 128
	tokenSuffixMin   = 10000
	tokenSuffixMax   = 1000000
)

// GenerateToken returns a new opaque auth token: hex encoded random bytes followed by a random
// decimal suffix, truncated to 128 characters.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error reading random bytes: %w", err)
	}
	suffix, err := randomInt(tokenSuffixMin, tokenSuffixMax)
	if err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf) + strconv.Itoa(suffix)
	if len(token) > tokenMaxLength {
		token = token[:tokenMaxLength]
	}
	return token, nil
}

// randomInt returns a uniform integer in [min, max].
func randomInt(min, max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min+1)))
	if err != nil {
		return 0, fmt.Errorf("error drawing random number: %w", err)
	}
	return min + int(n.Int64()), nil
}
