// Package committee holds the admin console endpoints. Everything
// here sits behind the committee/treasurer role gate.
package committee

import (
	"fmt"
	"net/http"
	"strings"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/internal/store"
	"hikesoc/access-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type createQRTokenBody struct {
	Name string `json:"name"`
}

// QRTokenCreate mints a new reusable QR token with a label like
// "Freshers Fair banner".
//
// POST /api/committee/qr-tokens
func QRTokenCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data createQRTokenBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	data.Name = strings.TrimSpace(data.Name)
	if data.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Name is required",
			"requestID": requestID,
		})
		return
	}

	auth := middleware.GetAuth(c)

	record, err := d.QRTokens.Create(data.Name, auth.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create QR token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   record,
	})
}

// QRTokenList returns all QR tokens, newest first.
//
// GET /api/committee/qr-tokens
func QRTokenList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	tokens, err := d.QRTokens.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list QR tokens", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tokens":  tokens,
	})
}

type toggleQRTokenBody struct {
	Enabled *bool `json:"enabled"`
}

// QRTokenToggle enables or disables a single token. A disable from
// here is manual, so a later global re-enable won't undo it.
//
// PATCH /api/committee/qr-tokens/:id
func QRTokenToggle(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data toggleQRTokenBody
	if err := c.ShouldBind(&data); err != nil || data.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Missing enabled field",
			"requestID": requestID,
		})
		return
	}

	err := d.QRTokens.SetEnabled(c.Param("id"), *data.Enabled)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success":   false,
				"error":     "QR token not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to toggle QR token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// QRTokenDelete removes a token for good.
//
// DELETE /api/committee/qr-tokens/:id
func QRTokenDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	err := d.QRTokens.Delete(c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success":   false,
				"error":     "QR token not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete QR token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// QRTokenImage renders the printable PNG for a token. The image
// encodes the public /qr/ redirect URL.
//
// GET /api/committee/qr-tokens/:id/image
func QRTokenImage(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	record, err := d.QRTokens.GetByID(c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success":   false,
				"error":     "QR token not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})
		return
	}

	url := fmt.Sprintf("https://%s/qr/%s", viper.GetString("host.domain"), record.Token)

	png, err := qrcode.Encode(url, qrcode.Medium, 512)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Failed to render QR code",
			"requestID": requestID,
		})

		zap.L().Error("Failed to render QR code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
