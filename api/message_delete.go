package api

import (
	"net/http"

	"bitwise74/avatar-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) MessageDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	messageID := c.Query("id")
	if messageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Message ID is required",
			"requestID": requestID,
		})
		return
	}

	res := a.DB.
		Where("id = ? AND user_id = ?", messageID, userID).
		Delete(model.Message{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete message", zap.Error(res.Error), zap.String("requestID", requestID))
		return
	}

	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Message not found. It either doesn't exist or you don't own it",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Message deleted successfully",
		"requestID": requestID,
	})
}
