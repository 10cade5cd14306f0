package whatsapp

import (
	"net/http"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/internal/model"
	"hikesoc/access-api/validators"

	"github.com/gin-gonic/gin"
)

type joinBody struct {
	Token string `json:"token"`
}

// Join redeems an email-link token.
//
// POST /join
func Join(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data joinBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	redeemSingleUse(c, d, data.Token, model.MethodEmailLink, validators.LinkTokenValidator, redeemMessages{
		invalid: msgLinkInvalid,
		used:    msgLinkUsed,
	})
}
