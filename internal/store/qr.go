package store

import (
	"errors"
	"time"

	"hikesoc/access-api/internal/model"
	"hikesoc/access-api/pkg/security"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

var ErrTokenDisabled = errors.New("token disabled")

type QRStore struct {
	db *gorm.DB
}

func NewQRStore(db *gorm.DB) *QRStore {
	return &QRStore{db: db}
}

func (s *QRStore) Create(name, createdBy string) (*model.QRToken, error) {
	id, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return nil, err
	}

	record := &model.QRToken{
		ID:        id,
		Token:     security.QRTokenValue(),
		Name:      name,
		State:     model.QRStateEnabled,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, err
	}

	return record, nil
}

func (s *QRStore) List() ([]model.QRToken, error) {
	var tokens []model.QRToken

	err := s.db.Order("created_at DESC").Find(&tokens).Error
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

func (s *QRStore) GetByID(id string) (*model.QRToken, error) {
	var record model.QRToken

	err := s.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &record, nil
}

func (s *QRStore) GetByToken(token string) (*model.QRToken, error) {
	var record model.QRToken

	err := s.db.Where("token = ?", token).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &record, nil
}

// SetEnabled flips a single token by committee action. A manual
// disable is recorded as such so a later global re-enable won't
// resurrect it.
func (s *QRStore) SetEnabled(id string, enabled bool) error {
	state := model.QRStateDisabledManually
	if enabled {
		state = model.QRStateEnabled
	}

	res := s.db.Model(model.QRToken{}).
		Where("id = ?", id).
		Update("state", state)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *QRStore) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(model.QRToken{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Touch records a successful scan.
func (s *QRStore) Touch(id string) error {
	return s.db.Model(model.QRToken{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"use_count":    gorm.Expr("use_count + 1"),
			"last_used_at": time.Now(),
		}).Error
}

// CascadeDisable force-disables every enabled token when the global
// QR switch is turned off. Manually disabled tokens are untouched.
func (s *QRStore) CascadeDisable() (int64, error) {
	res := s.db.Model(model.QRToken{}).
		Where("state = ?", model.QRStateEnabled).
		Update("state", model.QRStateDisabledCascade)

	return res.RowsAffected, res.Error
}

// CascadeRestore undoes CascadeDisable, re-enabling exactly the
// tokens the cascade turned off.
func (s *QRStore) CascadeRestore() (int64, error) {
	res := s.db.Model(model.QRToken{}).
		Where("state = ?", model.QRStateDisabledCascade).
		Update("state", model.QRStateEnabled)

	return res.RowsAffected, res.Error
}
