// Package store is the single authoritative home of token state.
// There is deliberately no in-process copy of anything here: the
// service runs as multiple short-lived instances, so every read and
// every state flip goes to the database.
package store

import (
	"errors"
	"time"

	"hikesoc/access-api/internal/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	ErrNotFound    = errors.New("token not found")
	ErrExpired     = errors.New("token expired")
	ErrAlreadyUsed = errors.New("token already used")
)

type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Issue persists a new unused token record. The token value comes
// from the caller because each channel generates a different shape.
func (s *TokenStore) Issue(token, contact, phone, method string, ttl time.Duration) (*model.AccessToken, error) {
	id, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &model.AccessToken{
		ID:        id,
		Token:     token,
		Contact:   contact,
		Phone:     phone,
		Method:    method,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, err
	}

	return record, nil
}

// Redeem flips a token to used with a single conditional update, so
// two concurrent redemptions of the same token can never both
// succeed. When the update matches nothing a follow-up read decides
// between not-found, expired and already-used.
func (s *TokenStore) Redeem(token, method string) (*model.AccessToken, error) {
	now := time.Now()

	res := s.db.Model(model.AccessToken{}).
		Where("token = ? AND method = ? AND used = ? AND expires_at > ?", token, method, false, now).
		Updates(map[string]any{"used": true, "used_at": now})
	if res.Error != nil {
		return nil, res.Error
	}

	var record model.AccessToken
	err := s.db.Where("token = ? AND method = ?", token, method).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	if res.RowsAffected == 1 {
		return &record, nil
	}

	// The record is returned alongside the error so callers can
	// still audit-log the masked contact.
	if record.Used {
		return &record, ErrAlreadyUsed
	}

	return &record, ErrExpired
}

// Get returns a token record without touching its state.
func (s *TokenStore) Get(token, method string) (*model.AccessToken, error) {
	var record model.AccessToken

	err := s.db.Where("token = ? AND method = ?", token, method).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &record, nil
}

// ExpireSweep deletes rows past their expiry. Used and unused alike,
// an expired token can never redeem again either way.
func (s *TokenStore) ExpireSweep() (int64, error) {
	res := s.db.
		Where("expires_at < ?", time.Now()).
		Delete(model.AccessToken{})
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected > 0 {
		zap.L().Debug("Swept expired tokens", zap.Int64("count", res.RowsAffected))
	}

	return res.RowsAffected, nil
}
