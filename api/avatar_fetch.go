package api

import (
	"errors"
	"net/http"

	"bitwise74/avatar-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// loadOwnedAvatar resolves the :id param against the ownership rules
// shared by fetch, update and delete. It writes the error response
// itself and returns nil when the caller should stop.
func (a *API) loadOwnedAvatar(c *gin.Context) *model.Avatar {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	avatarID := c.Param("id")

	var avatar model.Avatar

	err := a.DB.Where("id = ?", avatarID).First(&avatar).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Avatar not found",
				"requestID": requestID,
			})
			return nil
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch avatar", zap.Error(err), zap.String("requestID", requestID))
		return nil
	}

	if avatar.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "You are not authorized to access this avatar",
			"requestID": requestID,
		})
		return nil
	}

	return &avatar
}

func (a *API) AvatarFetch(c *gin.Context) {
	avatar := a.loadOwnedAvatar(c)
	if avatar == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"avatar": avatar,
	})
}
