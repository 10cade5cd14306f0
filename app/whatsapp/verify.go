package whatsapp

import (
	"net/http"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/internal/model"
	"hikesoc/access-api/validators"

	"github.com/gin-gonic/gin"
)

type verifyBody struct {
	Code string `json:"code"`
}

// Verify redeems a 6-digit verification code.
//
// POST /api/whatsapp-verify
func Verify(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data verifyBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	redeemSingleUse(c, d, data.Code, model.MethodSixDigitCode, validators.SixDigitValidator, redeemMessages{
		invalid: msgInvalidOrExpired,
		used:    msgAlreadyUsed,
	})
}
