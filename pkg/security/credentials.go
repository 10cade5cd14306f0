// Package security generates the credential values handed out by the
// different verification channels
package security

import (
	"crypto/rand"
	"fmt"

	"hikesoc/access-api/pkg/util"

	"github.com/google/uuid"
)

const (
	linkTokenBytes = 32
	shortCodeBytes = 6
)

// SixDigitCode returns a zero-padded numeric code in [000000, 999999].
func SixDigitCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	code := int(buf[0])<<16 | int(buf[1])<<8 | int(buf[2])
	return fmt.Sprintf("%06d", code%1000000), nil
}

// ShortCode returns a 12-character lowercase hex code, short enough
// to type but not guessable.
func ShortCode() (string, error) {
	return util.GenerateToken(shortCodeBytes)
}

// LinkToken returns a 64-character opaque token for email links.
func LinkToken() (string, error) {
	return util.GenerateToken(linkTokenBytes)
}

// QRTokenValue returns the value embedded in a printed QR code.
func QRTokenValue() string {
	return uuid.NewString()
}
