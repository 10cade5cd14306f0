package store

import (
	"errors"
	"time"

	"hikesoc/access-api/internal/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

var ErrAlreadyDecided = errors.New("request already decided")

type RequestStore struct {
	db *gorm.DB
}

func NewRequestStore(db *gorm.DB) *RequestStore {
	return &RequestStore{db: db}
}

func (s *RequestStore) Create(name, email, reason string) (*model.AccessRequest, error) {
	id, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return nil, err
	}

	record := &model.AccessRequest{
		ID:        id,
		Name:      name,
		Email:     email,
		Reason:    reason,
		Status:    model.RequestPending,
		CreatedAt: time.Now(),
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, err
	}

	return record, nil
}

func (s *RequestStore) ListPending() ([]model.AccessRequest, error) {
	var requests []model.AccessRequest

	err := s.db.
		Where("status = ?", model.RequestPending).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	return requests, nil
}

// Decide moves a pending request to approved or rejected. The status
// guard in the WHERE clause makes a double decision a no-op race-free.
func (s *RequestStore) Decide(id, status, decidedBy string) (*model.AccessRequest, error) {
	res := s.db.Model(model.AccessRequest{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Updates(map[string]any{
			"status":     status,
			"decided_at": time.Now(),
			"decided_by": decidedBy,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	var record model.AccessRequest
	err := s.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	if res.RowsAffected == 0 {
		return nil, ErrAlreadyDecided
	}

	return &record, nil
}
