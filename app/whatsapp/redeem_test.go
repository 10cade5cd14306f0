package whatsapp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/internal/model"
	"hikesoc/access-api/internal/service"
	"hikesoc/access-api/internal/store"
	"hikesoc/access-api/pkg/middleware"
	"hikesoc/access-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testInviteURL = "https://chat.whatsapp.com/TESTGROUP123"

func newTestRouter(t *testing.T) (*gin.Engine, *internal.Deps) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	viper.Set("whatsapp.fallback_invite_url", testInviteURL)
	viper.Set("whatsapp.config_cache_ttl", "20m")
	viper.Set("redis.addr", "")
	viper.Set("tokens.email_link_ttl", "24h")
	viper.Set("tokens.short_code_ttl", "24h")
	viper.Set("tokens.six_digit_ttl", "10m")

	db, err := gorm.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		model.AccessToken{},
		model.QRToken{},
		model.AccessLogEntry{},
		model.AccessRequest{},
	))

	tokens := store.NewTokenStore(db)
	d := &internal.Deps{
		DB:       db,
		Tokens:   tokens,
		QRTokens: store.NewQRStore(db),
		Requests: store.NewRequestStore(db),
		Issuer:   service.NewIssuer(tokens),
		Logger:   service.NewAccessLogger(db),
		Config:   service.NewConfigGateway(),
	}

	r := gin.New()
	r.Use(middleware.NewRequestIDMiddleware())
	r.POST("/join", func(c *gin.Context) { Join(c, d) })
	r.POST("/api/whatsapp-verify", func(c *gin.Context) { Verify(c, d) })
	r.POST("/api/whatsapp-redirect", func(c *gin.Context) { Redirect(c, d) })
	r.POST("/api/whatsapp-request", func(c *gin.Context) { RequestManual(c, d) })

	return r, d
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyRoundTrip(t *testing.T) {
	r, d := newTestRouter(t)

	_, err := d.Tokens.Issue("482913", "a@uni.ac.uk", "", model.MethodSixDigitCode, 10*time.Minute)
	require.NoError(t, err)

	w := post(r, "/api/whatsapp-verify", `{"code":"482913"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), testInviteURL)

	// Second presentation is rejected as already used
	w = post(r, "/api/whatsapp-verify", `{"code":"482913"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestVerifyUnknownCode(t *testing.T) {
	r, _ := newTestRouter(t)

	w := post(r, "/api/whatsapp-verify", `{"code":"000000"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), msgInvalidOrExpired)
}

func TestVerifyExpiredCodeLooksLikeUnknown(t *testing.T) {
	r, d := newTestRouter(t)

	_, err := d.Tokens.Issue("482913", "a@uni.ac.uk", "", model.MethodSixDigitCode, -time.Minute)
	require.NoError(t, err)

	w := post(r, "/api/whatsapp-verify", `{"code":"482913"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), msgInvalidOrExpired)
}

func TestVerifyMalformedCodeSkipsStore(t *testing.T) {
	r, d := newTestRouter(t)

	w := post(r, "/api/whatsapp-verify", `{"code":"12a45"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid verification code format")

	// The attempt still lands in the audit trail
	var entry model.AccessLogEntry
	require.NoError(t, d.DB.First(&entry).Error)
	assert.Equal(t, model.OutcomeFormatInvalid, entry.Outcome)
}

func TestJoinLinkRoundTrip(t *testing.T) {
	r, d := newTestRouter(t)

	token, err := security.LinkToken()
	require.NoError(t, err)

	_, err = d.Tokens.Issue(token, "a@uni.ac.uk", "", model.MethodEmailLink, 24*time.Hour)
	require.NoError(t, err)

	w := post(r, "/join", `{"token":"`+token+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), testInviteURL)

	w = post(r, "/join", `{"token":"`+token+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), msgLinkUsed)
}

func TestRedirectShortCodeViaIssuer(t *testing.T) {
	r, d := newTestRouter(t)

	record, err := d.Issuer.IssueShortCode("a@uni.ac.uk")
	require.NoError(t, err)
	require.Len(t, record.Token, 12)

	w := post(r, "/api/whatsapp-redirect", `{"code":"`+record.Token+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), testInviteURL)
}

func TestSuccessfulRedemptionIsAudited(t *testing.T) {
	r, d := newTestRouter(t)

	_, err := d.Tokens.Issue("482913", "jordan@uni.ac.uk", "", model.MethodSixDigitCode, 10*time.Minute)
	require.NoError(t, err)

	post(r, "/api/whatsapp-verify", `{"code":"482913"}`)

	var entry model.AccessLogEntry
	require.NoError(t, d.DB.Where("outcome = ?", model.OutcomeSuccess).First(&entry).Error)
	assert.Equal(t, "jo***@uni.ac.uk", entry.Contact)
	assert.Equal(t, model.MethodSixDigitCode, entry.Method)
}

func TestManualRequestValidation(t *testing.T) {
	r, d := newTestRouter(t)

	w := post(r, "/api/whatsapp-request", `{"name":"","email":"a@uni.ac.uk"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/api/whatsapp-request", `{"name":"Jordan","email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/api/whatsapp-request", `{"name":"Jordan","email":"jordan@uni.ac.uk","reason":"Lost my invite"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	pending, err := d.Requests.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Jordan", pending[0].Name)
}
