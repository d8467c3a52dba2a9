package api

import (
	"net/http"

	"bitwise74/avatar-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) AvatarDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	avatar := a.loadOwnedAvatar(c)
	if avatar == nil {
		return
	}

	err := a.DB.
		Where("id = ?", avatar.ID).
		Delete(model.Avatar{}).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete avatar", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Avatar deleted successfully",
		"requestID": requestID,
	})
}
