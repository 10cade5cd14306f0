package committee

import (
	"errors"
	"net/http"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConfigGet returns the live invite URL and the global QR switch.
// This audience is trusted, so the real values are shown.
//
// GET /api/committee/whatsapp-config
func ConfigGet(c *gin.Context, d *internal.Deps) {
	ctx := c.Request.Context()

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"whatsappUrl":       d.Config.InviteURL(ctx),
		"qrRedirectEnabled": d.Config.QRRedirectEnabled(ctx),
	})
}

type configUpdateBody struct {
	WhatsappURL       *string `json:"whatsappUrl"`
	QRRedirectEnabled *bool   `json:"qrRedirectEnabled"`
}

// ConfigUpdate writes either or both config values. Flipping the QR
// switch off cascades a force-disable over every enabled QR token;
// flipping it back on restores exactly those and leaves manually
// disabled ones alone.
//
// POST /api/committee/whatsapp-config
func ConfigUpdate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()

	var data configUpdateBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if data.WhatsappURL == nil && data.QRRedirectEnabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Nothing to update",
			"requestID": requestID,
		})
		return
	}

	if data.WhatsappURL != nil {
		if err := d.Config.SetInviteURL(ctx, *data.WhatsappURL); err != nil {
			if errors.Is(err, service.ErrInviteURLInvalid) {
				c.JSON(http.StatusBadRequest, gin.H{
					"success":   false,
					"error":     err.Error(),
					"requestID": requestID,
				})
				return
			}

			// Committee-facing, operational detail is fine here
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"error":     "Failed to write invite URL to the configuration store: " + err.Error(),
				"requestID": requestID,
			})

			zap.L().Error("Failed to write invite URL", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	}

	if data.QRRedirectEnabled != nil {
		if err := d.Config.SetQRRedirectEnabled(ctx, *data.QRRedirectEnabled); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"error":     "Failed to write QR flag to the configuration store: " + err.Error(),
				"requestID": requestID,
			})

			zap.L().Error("Failed to write QR flag", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		var affected int64
		var err error

		if *data.QRRedirectEnabled {
			affected, err = d.QRTokens.CascadeRestore()
		} else {
			affected, err = d.QRTokens.CascadeDisable()
		}

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"error":     "Flag written but the token cascade failed: " + err.Error(),
				"requestID": requestID,
			})

			zap.L().Error("QR token cascade failed", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		zap.L().Info("QR redirect flag changed",
			zap.Bool("enabled", *data.QRRedirectEnabled),
			zap.Int64("tokens_affected", affected))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
