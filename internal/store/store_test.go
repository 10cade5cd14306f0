package store

import (
	"testing"
	"time"

	"hikesoc/access-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		model.AccessToken{},
		model.QRToken{},
		model.AccessLogEntry{},
		model.AccessRequest{},
	))

	return db
}

func TestIssueThenRedeem(t *testing.T) {
	s := NewTokenStore(newTestDB(t))

	issued, err := s.Issue("482913", "a@uni.ac.uk", "", model.MethodSixDigitCode, time.Minute)
	require.NoError(t, err)
	assert.False(t, issued.Used)
	assert.Equal(t, "a@uni.ac.uk", issued.Contact)

	redeemed, err := s.Redeem("482913", model.MethodSixDigitCode)
	require.NoError(t, err)
	assert.True(t, redeemed.Used)
	assert.NotNil(t, redeemed.UsedAt)
}

func TestRedeemTwiceFailsSecondTime(t *testing.T) {
	s := NewTokenStore(newTestDB(t))

	_, err := s.Issue("482913", "a@uni.ac.uk", "", model.MethodSixDigitCode, time.Minute)
	require.NoError(t, err)

	_, err = s.Redeem("482913", model.MethodSixDigitCode)
	require.NoError(t, err)

	record, err := s.Redeem("482913", model.MethodSixDigitCode)
	assert.ErrorIs(t, err, ErrAlreadyUsed)
	require.NotNil(t, record)
	assert.Equal(t, "a@uni.ac.uk", record.Contact)
}

func TestRedeemExpiredToken(t *testing.T) {
	s := NewTokenStore(newTestDB(t))

	_, err := s.Issue("482913", "a@uni.ac.uk", "", model.MethodSixDigitCode, -time.Minute)
	require.NoError(t, err)

	_, err = s.Redeem("482913", model.MethodSixDigitCode)
	assert.ErrorIs(t, err, ErrExpired)

	// A failed redemption must not have flipped the row
	record, err := s.Get("482913", model.MethodSixDigitCode)
	require.NoError(t, err)
	assert.False(t, record.Used)
}

func TestRedeemUnknownToken(t *testing.T) {
	s := NewTokenStore(newTestDB(t))

	_, err := s.Redeem("000000", model.MethodSixDigitCode)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedeemWrongMethod(t *testing.T) {
	s := NewTokenStore(newTestDB(t))

	_, err := s.Issue("482913", "a@uni.ac.uk", "", model.MethodSixDigitCode, time.Minute)
	require.NoError(t, err)

	// A 6-digit code presented on the short-code channel is a miss
	_, err = s.Redeem("482913", model.MethodShortCode)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssueDuplicateTokenValue(t *testing.T) {
	s := NewTokenStore(newTestDB(t))

	_, err := s.Issue("482913", "a@uni.ac.uk", "", model.MethodSixDigitCode, time.Minute)
	require.NoError(t, err)

	_, err = s.Issue("482913", "b@uni.ac.uk", "", model.MethodSixDigitCode, time.Minute)
	assert.Error(t, err)
}

func TestExpireSweep(t *testing.T) {
	s := NewTokenStore(newTestDB(t))

	_, err := s.Issue("482913", "a@uni.ac.uk", "", model.MethodSixDigitCode, -time.Minute)
	require.NoError(t, err)
	_, err = s.Issue("175620", "b@uni.ac.uk", "", model.MethodSixDigitCode, time.Hour)
	require.NoError(t, err)

	swept, err := s.ExpireSweep()
	require.NoError(t, err)
	assert.EqualValues(t, 1, swept)

	_, err = s.Get("482913", model.MethodSixDigitCode)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get("175620", model.MethodSixDigitCode)
	assert.NoError(t, err)
}

func TestQRTokenLifecycle(t *testing.T) {
	s := NewQRStore(newTestDB(t))

	created, err := s.Create("Freshers Fair banner", "treasurer@uni.ac.uk")
	require.NoError(t, err)
	assert.Equal(t, model.QRStateEnabled, created.State)
	assert.NotEmpty(t, created.Token)

	found, err := s.GetByToken(created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.True(t, found.Active())

	require.NoError(t, s.Touch(created.ID))
	require.NoError(t, s.Touch(created.ID))

	found, err = s.GetByID(created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, found.UseCount)
	assert.NotNil(t, found.LastUsedAt)
}

func TestQRTokenManualToggle(t *testing.T) {
	s := NewQRStore(newTestDB(t))

	created, err := s.Create("Clubroom poster", "committee@uni.ac.uk")
	require.NoError(t, err)

	require.NoError(t, s.SetEnabled(created.ID, false))

	found, err := s.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QRStateDisabledManually, found.State)
	assert.False(t, found.Active())

	require.NoError(t, s.SetEnabled(created.ID, true))

	found, err = s.GetByID(created.ID)
	require.NoError(t, err)
	assert.True(t, found.Active())

	assert.ErrorIs(t, s.SetEnabled("nope", true), ErrNotFound)
}

func TestQRCascadePreservesManualDisables(t *testing.T) {
	s := NewQRStore(newTestDB(t))

	banner, err := s.Create("Freshers Fair banner", "c@uni.ac.uk")
	require.NoError(t, err)
	poster, err := s.Create("Clubroom poster", "c@uni.ac.uk")
	require.NoError(t, err)

	// Poster turned off by hand before the global switch flips
	require.NoError(t, s.SetEnabled(poster.ID, false))

	affected, err := s.CascadeDisable()
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	b, _ := s.GetByID(banner.ID)
	p, _ := s.GetByID(poster.ID)
	assert.Equal(t, model.QRStateDisabledCascade, b.State)
	assert.Equal(t, model.QRStateDisabledManually, p.State)

	affected, err = s.CascadeRestore()
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	// Only the cascade-disabled token comes back
	b, _ = s.GetByID(banner.ID)
	p, _ = s.GetByID(poster.ID)
	assert.True(t, b.Active())
	assert.False(t, p.Active())
}

func TestQRTokenDelete(t *testing.T) {
	s := NewQRStore(newTestDB(t))

	created, err := s.Create("Old banner", "c@uni.ac.uk")
	require.NoError(t, err)

	require.NoError(t, s.Delete(created.ID))
	assert.ErrorIs(t, s.Delete(created.ID), ErrNotFound)

	_, err = s.GetByToken(created.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestDecideOnlyOnce(t *testing.T) {
	s := NewRequestStore(newTestDB(t))

	created, err := s.Create("Jordan", "jordan@uni.ac.uk", "Lost my invite")
	require.NoError(t, err)

	pending, err := s.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	decided, err := s.Decide(created.ID, model.RequestApproved, "treasurer@uni.ac.uk")
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, decided.Status)
	assert.NotNil(t, decided.DecidedAt)

	_, err = s.Decide(created.ID, model.RequestRejected, "someone@uni.ac.uk")
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	pending, err = s.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRequestDecideMissing(t *testing.T) {
	s := NewRequestStore(newTestDB(t))

	_, err := s.Decide("missing", model.RequestApproved, "c@uni.ac.uk")
	assert.ErrorIs(t, err, ErrNotFound)
}
