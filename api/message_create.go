package api

import (
	"net/http"
	"strings"

	"bitwise74/avatar-api/model"
	"bitwise74/avatar-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type messageBody struct {
	Content  string  `json:"content"`
	Type     string  `json:"type"`
	Metadata *string `json:"metadata"`
}

func (a *API) MessageCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data messageBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	content := strings.TrimSpace(data.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Content is required",
			"requestID": requestID,
		})
		return
	}

	if data.Type != model.MessageTypeUser && data.Type != model.MessageTypeAI {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     `Type must be either "user" or "ai"`,
			"requestID": requestID,
		})
		return
	}

	if !a.MessageLimiter.Check(userID) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "Rate limit exceeded. Please wait before sending more messages.",
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

		zap.L().Error("Failed to generate message ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	message := model.Message{
		ID:       id,
		Content:  content,
		Type:     data.Type,
		Metadata: data.Metadata,
		UserID:   userID,
	}

	if err := a.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create message", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Only messages that actually got stored count toward the limit
	a.MessageLimiter.Record(userID)

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
	})
}
