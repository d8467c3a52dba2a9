package api

import (
	"net/http"
	"strings"

	"bitwise74/avatar-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) AvatarUpdate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	avatar := a.loadOwnedAvatar(c)
	if avatar == nil {
		return
	}

	var data avatarBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	name := strings.TrimSpace(data.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Name is required",
			"requestID": requestID,
		})
		return
	}

	err := a.DB.
		Model(model.Avatar{}).
		Where("id = ?", avatar.ID).
		Updates(map[string]any{
			"name":        name,
			"description": data.trimmedDescription(),
		}).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update avatar", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	avatar.Name = name
	avatar.Description = data.trimmedDescription()

	c.JSON(http.StatusOK, gin.H{
		"avatar": avatar,
	})
}
