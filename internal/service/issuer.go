package service

import (
	"fmt"

	"hikesoc/access-api/internal/model"
	"hikesoc/access-api/internal/store"
	"hikesoc/access-api/pkg/security"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// issueAttempts bounds the retry loop on a token value collision.
// With 64-char link tokens a collision basically never happens, with
// 6-digit codes it's merely unlikely.
const issueAttempts = 3

// Issuer creates single-use credentials and hands them to the mail
// courier. A courier failure is reported to the caller but the token
// record stays persisted, losing the credential silently would leave
// the member with nothing to retry against.
type Issuer struct {
	tokens *store.TokenStore
}

func NewIssuer(tokens *store.TokenStore) *Issuer {
	return &Issuer{tokens: tokens}
}

// IssueEmailLink creates a 24h single-use link token and mails it.
func (i *Issuer) IssueEmailLink(contact, phone string) (*model.AccessToken, error) {
	record, err := i.issue(contact, phone, model.MethodEmailLink, security.LinkToken)
	if err != nil {
		return nil, err
	}

	if err := SendJoinLinkMail(record); err != nil {
		zap.L().Error("Failed to send join link mail", zap.Error(err), zap.String("token_id", record.ID))
		return record, fmt.Errorf("failed to deliver join link, %w", err)
	}

	return record, nil
}

// IssueSixDigitCode creates a short-lived 6-digit code and mails it.
func (i *Issuer) IssueSixDigitCode(contact string) (*model.AccessToken, error) {
	record, err := i.issue(contact, "", model.MethodSixDigitCode, security.SixDigitCode)
	if err != nil {
		return nil, err
	}

	if err := SendVerificationCodeMail(record); err != nil {
		zap.L().Error("Failed to send verification code mail", zap.Error(err), zap.String("token_id", record.ID))
		return record, fmt.Errorf("failed to deliver verification code, %w", err)
	}

	return record, nil
}

// IssueShortCode creates a 12-hex short code. Delivery is up to the
// caller, short codes are shown on screen rather than mailed.
func (i *Issuer) IssueShortCode(contact string) (*model.AccessToken, error) {
	return i.issue(contact, "", model.MethodShortCode, security.ShortCode)
}

func (i *Issuer) issue(contact, phone, method string, generate func() (string, error)) (*model.AccessToken, error) {
	ttl := viper.GetDuration(ttlKey(method))

	var lastErr error
	for attempt := 0; attempt < issueAttempts; attempt++ {
		token, err := generate()
		if err != nil {
			return nil, err
		}

		record, err := i.tokens.Issue(token, contact, phone, method, ttl)
		if err == nil {
			return record, nil
		}

		// Most likely a unique collision on the token value,
		// regenerate and try again.
		lastErr = err
	}

	return nil, fmt.Errorf("failed to issue %s token, %w", method, lastErr)
}

func ttlKey(method string) string {
	switch method {
	case model.MethodSixDigitCode:
		return "tokens.six_digit_ttl"
	case model.MethodShortCode:
		return "tokens.short_code_ttl"
	default:
		return "tokens.email_link_ttl"
	}
}
