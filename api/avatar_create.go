package api

import (
	"net/http"
	"strings"

	"bitwise74/avatar-api/model"
	"bitwise74/avatar-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type avatarBody struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// trimmedDescription normalizes an optional description to nil when
// empty after trimming
func (b *avatarBody) trimmedDescription() *string {
	if b.Description == nil {
		return nil
	}

	d := strings.TrimSpace(*b.Description)
	if d == "" {
		return nil
	}

	return &d
}

func (a *API) AvatarCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

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

	id, err := service.NewID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate avatar ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	avatar := model.Avatar{
		ID:          id,
		Name:        name,
		Description: data.trimmedDescription(),
		UserID:      userID,
	}

	if err := a.DB.Create(&avatar).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create avatar", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"avatar": avatar,
	})
}
