package service

import (
	"strings"
	"time"

	"hikesoc/access-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccessLogger appends audit entries for every redemption attempt.
// It never fails the redemption that triggered it: a write error is
// logged server-side and swallowed.
type AccessLogger struct {
	db *gorm.DB
}

func NewAccessLogger(db *gorm.DB) *AccessLogger {
	return &AccessLogger{db: db}
}

// Record appends one entry. Contact is masked before it's stored.
func (l *AccessLogger) Record(contact, method, outcome, clientIP string) {
	entry := model.AccessLogEntry{
		Contact:   MaskContact(contact),
		Method:    method,
		Outcome:   outcome,
		ClientIP:  clientIP,
		CreatedAt: time.Now(),
	}

	if err := l.db.Create(&entry).Error; err != nil {
		zap.L().Warn("Failed to append access log entry",
			zap.Error(err),
			zap.String("method", method),
			zap.String("outcome", outcome))
	}
}

// List returns entries newest first for the committee audit view.
func (l *AccessLogger) List(page, perPage int) ([]model.AccessLogEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var total int64
	if err := l.db.Model(model.AccessLogEntry{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.AccessLogEntry
	err := l.db.
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// MaskContact hides most of the local part of an email address,
// "jordan@uni.ac.uk" becomes "jo***@uni.ac.uk". Non-email contacts
// keep their first two characters.
func MaskContact(contact string) string {
	if contact == "" {
		return ""
	}

	local := contact
	domain := ""
	if at := strings.Index(contact, "@"); at >= 0 {
		local = contact[:at]
		domain = contact[at:]
	}

	if len(local) <= 2 {
		return local + "***" + domain
	}

	return local[:2] + "***" + domain
}
