package whatsapp

import (
	"net/http"
	"strings"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxReasonLength = 500

type manualRequestBody struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// RequestManual files a manual join request for committee review.
// Sits behind the bot check and the fixed-window rate limit.
//
// POST /api/whatsapp-request
func RequestManual(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data manualRequestBody
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

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if len(data.Reason) > maxReasonLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Reason is too long",
			"requestID": requestID,
		})
		return
	}

	if _, err := d.Requests.Create(data.Name, data.Email, data.Reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create access request", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
