// Package qr serves the scannable QR entry point into the WhatsApp
// group
package qr

import (
	"fmt"
	"net/http"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/internal/model"
	"hikesoc/access-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Redirect redeems a QR token and sends the scanner straight into
// the group. QR tokens are reusable: redemption only checks the
// token state and the global switch, and every scan is logged
// whatever the outcome.
//
// GET /qr/:token
func Redirect(c *gin.Context, d *internal.Deps) {
	token := c.Param("token")
	ip := c.ClientIP()

	unavailable := fmt.Sprintf("https://%s/whatsapp-unavailable", viper.GetString("host.domain"))

	record, err := d.QRTokens.GetByToken(token)
	if err != nil {
		if err == store.ErrNotFound {
			d.Logger.Record("", model.MethodQR, model.OutcomeNotFound, ip)
			c.Redirect(http.StatusFound, unavailable)
			return
		}

		zap.L().Error("Failed to look up QR token", zap.Error(err))
		c.Redirect(http.StatusFound, unavailable)
		return
	}

	if !d.Config.QRRedirectEnabled(c.Request.Context()) {
		d.Logger.Record(record.Name, model.MethodQR, model.OutcomeQRDisabled, ip)
		c.Redirect(http.StatusFound, unavailable)
		return
	}

	if !record.Active() {
		d.Logger.Record(record.Name, model.MethodQR, model.OutcomeTokenDisabled, ip)
		c.Redirect(http.StatusFound, unavailable)
		return
	}

	if err := d.QRTokens.Touch(record.ID); err != nil {
		// A missed counter bump shouldn't block the scanner
		zap.L().Warn("Failed to bump QR token use count", zap.Error(err), zap.String("qr_token_id", record.ID))
	}

	d.Logger.Record(record.Name, model.MethodQR, model.OutcomeSuccess, ip)

	c.Redirect(http.StatusFound, d.Config.InviteURL(c.Request.Context()))
}
