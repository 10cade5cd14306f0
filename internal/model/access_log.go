package model

import "time"

// Redemption outcomes recorded in the audit trail.
const (
	OutcomeSuccess       = "success"
	OutcomeNotFound      = "not_found"
	OutcomeExpired       = "expired"
	OutcomeAlreadyUsed   = "already_used"
	OutcomeFormatInvalid = "format_invalid"
	OutcomeTokenDisabled = "token_disabled"
	OutcomeQRDisabled    = "qr_disabled"
)

// AccessLogEntry is one row of the append-only audit trail. Contact
// is masked before it ever reaches the database.
type AccessLogEntry struct {
	ID        int    `gorm:"primaryKey;autoIncrement"`
	Contact   string `gorm:"index"`
	Method    string `gorm:"index"`
	Outcome   string `gorm:"index"`
	ClientIP  string
	CreatedAt time.Time `gorm:"index"`
}
