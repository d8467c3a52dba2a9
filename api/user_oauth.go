package api

import (
	"net/http"

	"bitwise74/avatar-api/security"
	"bitwise74/avatar-api/service"
	"bitwise74/avatar-api/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type oauthBody struct {
	Provider string `json:"provider"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Image    string `json:"image"`
}

// UserOAuth accepts a federated identity from the OAuth gateway and
// creates or links the local account. First sign-in trusts the
// provider's email verification, so the account starts verified and
// without a local password.
func (a *API) UserOAuth(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data oauthBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Provider field can't be empty",
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(validators.NormalizeEmail(data.Email)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	user, err := a.Auth.OAuthSignIn(service.OAuthProfile{
		Provider: data.Provider,
		Email:    data.Email,
		Name:     data.Name,
		Image:    data.Image,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to sign in OAuth user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	authToken, err := security.MakeSessionToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate session token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	maxAge := int(security.SessionLifetime.Seconds())
	sslEnabled := viper.GetBool("host.ssl.enabled")

	c.SetCookie("auth_token", authToken, maxAge, "/", "", sslEnabled, true)
	c.SetCookie("logged_in", "1", maxAge, "/", "", sslEnabled, false)
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}
