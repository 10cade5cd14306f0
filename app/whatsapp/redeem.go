// Package whatsapp holds the public endpoints of the WhatsApp access
// flow: redeeming credentials and asking for new ones
package whatsapp

import (
	"errors"
	"net/http"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/internal/model"
	"hikesoc/access-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// User-facing redemption messages. Not-found and expired share one
// wording on purpose: distinguishing them would let someone probe
// which codes exist.
const (
	msgInvalidOrExpired = "Invalid or expired code"
	msgAlreadyUsed      = "This code was already used and has expired"
	msgLinkInvalid      = "Invalid or expired link"
	msgLinkUsed         = "This link was already used and has expired"
)

type redeemMessages struct {
	invalid string
	used    string
}

// redeemSingleUse runs the exactly-once redemption flow shared by
// all three single-use channels. Format validation happens before
// any store lookup.
func redeemSingleUse(c *gin.Context, d *internal.Deps, token, method string, validate func(string) error, msgs redeemMessages) {
	requestID := c.MustGet("requestID").(string)
	ip := c.ClientIP()

	if err := validate(token); err != nil {
		d.Logger.Record("", method, model.OutcomeFormatInvalid, ip)

		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	record, err := d.Tokens.Redeem(token, method)
	if err != nil {
		contact := ""
		if record != nil {
			contact = record.Contact
		}

		switch {
		case errors.Is(err, store.ErrNotFound):
			d.Logger.Record(contact, method, model.OutcomeNotFound, ip)

			c.JSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"error":     msgs.invalid,
				"requestID": requestID,
			})
		case errors.Is(err, store.ErrExpired):
			d.Logger.Record(contact, method, model.OutcomeExpired, ip)

			c.JSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"error":     msgs.invalid,
				"requestID": requestID,
			})
		case errors.Is(err, store.ErrAlreadyUsed):
			d.Logger.Record(contact, method, model.OutcomeAlreadyUsed, ip)

			c.JSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"error":     msgs.used,
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to redeem token", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	d.Logger.Record(record.Contact, method, model.OutcomeSuccess, ip)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"whatsappUrl": d.Config.InviteURL(c.Request.Context()),
	})
}
