package whatsapp

import (
	"net/http"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/internal/model"
	"hikesoc/access-api/validators"

	"github.com/gin-gonic/gin"
)

type redirectBody struct {
	Code string `json:"code"`
}

// Redirect redeems a 12-hex short code.
//
// POST /api/whatsapp-redirect
func Redirect(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data redirectBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	redeemSingleUse(c, d, data.Code, model.MethodShortCode, validators.ShortCodeValidator, redeemMessages{
		invalid: msgInvalidOrExpired,
		used:    msgAlreadyUsed,
	})
}
