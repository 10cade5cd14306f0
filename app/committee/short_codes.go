package committee

import (
	"net/http"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type shortCodeBody struct {
	Email string `json:"email"`
}

// ShortCodeCreate issues a 12-hex short code on the spot, for the
// desk-at-the-fair flow where a committee member reads the code out
// to someone instead of mailing it.
//
// POST /api/committee/short-codes
func ShortCodeCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data shortCodeBody
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

	record, err := d.Issuer.IssueShortCode(data.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue short code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"code":      record.Token,
		"expiresAt": record.ExpiresAt,
	})
}
