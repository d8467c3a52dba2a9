package service

import (
	"time"

	"bitwise74/avatar-api/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenCleanup periodically deletes expired verification and password
// reset tokens. Expired tokens are also removed lazily on lookup, this
// sweep just keeps abandoned ones from piling up.
func TokenCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			err := db.
				Where("expires_at < ?", time.Now()).
				Delete(model.VerificationToken{}).
				Error
			if err != nil {
				zap.L().Error("Failed to cleanup verification tokens", zap.Error(err))
			}

			err = db.
				Where("expires_at < ?", time.Now()).
				Delete(model.PasswordResetToken{}).
				Error
			if err != nil {
				zap.L().Error("Failed to cleanup password reset tokens", zap.Error(err))
			}
		}
	}()
}
