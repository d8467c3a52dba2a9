package api

import (
	"errors"
	"net/http"

	"bitwise74/avatar-api/model"
	"bitwise74/avatar-api/service"
	"bitwise74/avatar-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type resetRequestBody struct {
	Email string `json:"email"`
}

// genericResetMessage is returned whether or not the email matched an
// account, so the endpoint can't be used to enumerate users
const genericResetMessage = "If an account exists with this email, a password reset link will be sent."

func (a *API) PasswordResetRequest(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resetRequestBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	email := validators.NormalizeEmail(data.Email)

	if err := validators.EmailValidator(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	var user model.User

	err := a.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"message":   genericResetMessage,
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// This reveals verification status for an existing address, but
	// never whether an address exists
	if user.EmailVerified == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Please verify your email before requesting a password reset.",
			"requestID": requestID,
		})
		return
	}

	token, err := a.Tokens.IssueReset(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrResetCooldown) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":     "Please wait 15 minutes before requesting another reset.",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue reset token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	resp := gin.H{
		"message":   genericResetMessage,
		"requestID": requestID,
	}

	if a.Mailer.Enabled() {
		if err := a.Mailer.SendReset(user.Email, token.Token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to send reset email", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	} else {
		resp["resetUrl"] = a.Mailer.ResetURL(token.Token)
	}

	c.JSON(http.StatusOK, resp)
}
