package api

import (
	"errors"
	"net/http"
	"strings"

	"bitwise74/avatar-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) UserVerify(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No verification token provided",
			"requestID": requestID,
		})
		return
	}

	err := a.Tokens.ConsumeVerification(token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid or expired token",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Token has expired. Please request a new verification email.",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrTokenUsed):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Token has already been used",
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to consume verification token", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Email verified successfully",
		"requestID": requestID,
	})
}
