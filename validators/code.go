package validators

import (
	"errors"
	"regexp"
)

var (
	ErrCodeFormat      = errors.New("Invalid verification code format")
	ErrShortCodeFormat = errors.New("Invalid code format")
	ErrTokenFormat     = errors.New("Invalid token format")

	sixDigitRe  = regexp.MustCompile(`^[0-9]{6}$`)
	shortCodeRe = regexp.MustCompile(`^[0-9a-f]{12}$`)
	linkTokenRe = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// SixDigitValidator rejects anything that isn't exactly six digits.
// Runs before any store lookup so junk input never hits the database.
func SixDigitValidator(code string) error {
	if !sixDigitRe.MatchString(code) {
		return ErrCodeFormat
	}

	return nil
}

func ShortCodeValidator(code string) error {
	if !shortCodeRe.MatchString(code) {
		return ErrShortCodeFormat
	}

	return nil
}

func LinkTokenValidator(token string) error {
	if !linkTokenRe.MatchString(token) {
		return ErrTokenFormat
	}

	return nil
}
