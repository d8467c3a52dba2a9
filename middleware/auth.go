package middleware

import (
	"errors"
	"net/http"
	"time"

	"bitwise74/avatar-api/model"
	"bitwise74/avatar-api/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionCookie = "auth_token"

// NewAuthMiddleware authenticates requests from the signed session
// cookie. Identity is always re-derived from the token claims, never
// taken from client-supplied IDs. Tokens older than a day are
// reissued so active sessions keep rolling up to the 30 day cap.
func NewAuthMiddleware(d *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr, err := c.Cookie(sessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Unauthorized",
				"requestID": requestID,
			})
			return
		}

		claims, err := security.ParseSessionToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Unauthorized",
				"requestID": requestID,
			})
			return
		}

		var user model.User
		err = d.Where("id = ?", claims.UserID).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Unauthorized",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if time.Since(claims.IssuedAt) > security.SessionRenewAfter {
			fresh, err := security.MakeSessionToken(user.ID, user.Role)
			if err == nil {
				c.SetCookie(sessionCookie, fresh, int(security.SessionLifetime.Seconds()), "/", "", viper.GetBool("host.ssl.enabled"), true)
			}
		}

		c.Set("userID", user.ID)
		c.Set("userRole", user.Role)
		c.Next()
	}
}
