package committee

import (
	"errors"
	"net/http"

	"hikesoc/access-api/internal"
	"hikesoc/access-api/internal/model"
	"hikesoc/access-api/internal/store"
	"hikesoc/access-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestList returns pending manual join requests, oldest first.
//
// GET /api/committee/requests
func RequestList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	requests, err := d.Requests.ListPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list access requests", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": requests,
	})
}

// RequestApprove marks a request approved and mails the requester a
// single-use join link. If the mail bounces the approval and the
// token both stand, approving again re-sends a fresh link.
//
// POST /api/committee/requests/:id/approve
func RequestApprove(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	auth := middleware.GetAuth(c)

	record, err := d.Requests.Decide(c.Param("id"), model.RequestApproved, auth.Email)
	if err != nil {
		respondDecideError(c, requestID, err)
		return
	}

	if _, err := d.Issuer.IssueEmailLink(record.Email, ""); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success":   false,
			"error":     "Request approved but the invite mail failed to send: " + err.Error(),
			"requestID": requestID,
		})

		zap.L().Error("Failed to mail approved requester", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// RequestReject marks a request rejected. No mail goes out.
//
// POST /api/committee/requests/:id/reject
func RequestReject(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	auth := middleware.GetAuth(c)

	_, err := d.Requests.Decide(c.Param("id"), model.RequestRejected, auth.Email)
	if err != nil {
		respondDecideError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

func respondDecideError(c *gin.Context, requestID string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success":   false,
			"error":     "Request not found",
			"requestID": requestID,
		})
	case errors.Is(err, store.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, gin.H{
			"success":   false,
			"error":     "Request was already decided",
			"requestID": requestID,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to decide access request", zap.Error(err), zap.String("requestID", requestID))
	}
}
