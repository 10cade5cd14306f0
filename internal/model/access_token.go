package model

import "time"

// Delivery channels for single-use access tokens.
const (
	MethodEmailLink    = "email_link"
	MethodSixDigitCode = "six_digit_code"
	MethodShortCode    = "short_code"
	MethodManual       = "manual"
	MethodQR           = "qr"
)

// AccessToken is a single-use credential gating the WhatsApp invite
// link. It flips from unused to used exactly once and is never reset.
type AccessToken struct {
	ID        string `gorm:"primaryKey"`
	Token     string `gorm:"uniqueIndex;not null"`
	Contact   string `gorm:"index;not null"`
	Phone     string
	Method    string `gorm:"index;not null"`
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}
