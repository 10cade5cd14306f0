package security

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSixDigitCodeShape(t *testing.T) {
	re := regexp.MustCompile(`^[0-9]{6}$`)

	for n := 0; n < 50; n++ {
		code, err := SixDigitCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestShortCodeShape(t *testing.T) {
	code, err := ShortCode()
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{12}$`, code)
}

func TestLinkTokenShape(t *testing.T) {
	token, err := LinkToken()
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{64}$`, token)

	other, err := LinkToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestQRTokenValueIsUUID(t *testing.T) {
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, QRTokenValue())
}
