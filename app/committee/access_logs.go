package committee

import (
	"net/http"
	"strconv"

	"hikesoc/access-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLogList pages through the audit trail, newest first.
// Contacts were masked at write time, there's nothing sensitive to
// strip here.
//
// GET /api/committee/access-logs
func AccessLogList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	entries, total, err := d.Logger.List(page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list access logs", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"entries": entries,
		"total":   total,
	})
}
