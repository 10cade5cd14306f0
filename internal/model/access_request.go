package model

import "time"

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// AccessRequest is a manual join request left by someone who can't
// use any of the self-service channels. A committee member approves
// it (which issues and mails an email-link token) or rejects it.
type AccessRequest struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"index;not null"`
	Reason    string
	Status    string `gorm:"index;default:pending"`
	DecidedAt *time.Time
	DecidedBy string
	CreatedAt time.Time
}
