// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"crypto/rand"
	"encoding/hex"
	mrand "math/rand"
	"time"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var src = mrand.NewSource(time.Now().UnixNano())

// RandStr returns a random alphabetic string. Fast but not
// cryptographic, only use it for request IDs and the like.
func RandStr(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[src.Int63()%int64(len(charset))]
	}

	return string(b)
}

// GenerateToken returns n random bytes hex-encoded, so the resulting
// string is 2n characters long.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
