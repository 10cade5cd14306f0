package model

import "time"

// QR token states. A cascade disable (global QR switch flipped off)
// is kept distinct from a manual one so a global re-enable can
// restore exactly the tokens it turned off and nothing else.
const (
	QRStateEnabled          = "enabled"
	QRStateDisabledCascade  = "disabled_by_cascade"
	QRStateDisabledManually = "disabled_manually"
)

// QRToken is a long-lived, reusable credential embedded in a printed
// QR code. Unlike AccessToken it never flips to used, it's toggled
// by the committee instead.
type QRToken struct {
	ID         string `gorm:"primaryKey"`
	Token      string `gorm:"uniqueIndex;not null"`
	Name       string `gorm:"not null"`
	State      string `gorm:"index;default:enabled"`
	CreatedBy  string
	LastUsedAt *time.Time
	UseCount   int64
	CreatedAt  time.Time
}

// Active reports whether the token itself allows redemption. The
// global QR flag is checked separately by the caller.
func (q *QRToken) Active() bool {
	return q.State == QRStateEnabled
}
