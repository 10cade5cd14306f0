// Package root holds endpoints that don't belong to any feature area
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers uptime probes.
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
