package whatsapp

import (
	"net/http"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type requestCodeBody struct {
	Email string `json:"email"`
}

// RequestCode issues a fresh 6-digit code and mails it. The response
// never contains the code itself.
//
// POST /api/whatsapp-code
func RequestCode(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data requestCodeBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	record, err := d.Issuer.IssueSixDigitCode(data.Email)
	if err != nil {
		// A persisted token with failed delivery is reported as an
		// upstream problem, the committee can still re-send it.
		status := http.StatusInternalServerError
		if record != nil {
			status = http.StatusBadGateway
		}

		c.JSON(status, gin.H{
			"success":   false,
			"error":     "Failed to send the verification code, please try again later",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue verification code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
