package service

import (
	"errors"
	"time"

	"bitwise74/avatar-api/model"
	"bitwise74/avatar-api/security"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = time.Hour
)

var (
	// ErrTokenInvalid deliberately doesn't distinguish "never existed"
	// from "expired and already cleaned up"
	ErrTokenInvalid  = errors.New("invalid or expired token")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenUsed     = errors.New("token already used")
	ErrResetCooldown = errors.New("a reset was requested recently")
)

// Tokens owns the lifecycle of verification and password reset
// tokens: issued -> consumed | expired. Consumption is paired with its
// side effect in a single transaction. The conditional update on
// used = false doubles as the race check: whichever of two concurrent
// consumers loses reports ErrTokenUsed instead of applying the side
// effect twice.
type Tokens struct {
	DB *gorm.DB
}

func NewTokens(db *gorm.DB) *Tokens {
	return &Tokens{DB: db}
}

func (t *Tokens) IssueVerification(userID string) (*model.VerificationToken, error) {
	token, err := security.GenerateToken()
	if err != nil {
		return nil, err
	}

	record := &model.VerificationToken{
		Token:      token,
		Identifier: userID,
		ExpiresAt:  time.Now().Add(VerificationTokenTTL),
	}

	if err := t.DB.Create(record).Error; err != nil {
		return nil, err
	}

	return record, nil
}

// ConsumeVerification marks the token used and stamps the owning
// user's EmailVerified in one transaction. An expired token is
// removed on lookup and reported as expired.
func (t *Tokens) ConsumeVerification(token string) error {
	var record model.VerificationToken

	err := t.DB.Where("token = ?", token).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenInvalid
		}

		return err
	}

	if record.Used {
		return ErrTokenUsed
	}

	if time.Now().After(record.ExpiresAt) {
		// The sweep will retry if this fails, the token is dead either way
		if err := t.DB.Where("token = ?", token).Delete(model.VerificationToken{}).Error; err != nil {
			zap.L().Error("Failed to delete expired verification token", zap.Error(err))
		}

		return ErrTokenExpired
	}

	return t.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(model.VerificationToken{}).
			Where("token = ? AND used = ?", token, false).
			Updates(map[string]any{
				"used":    true,
				"used_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrTokenUsed
		}

		return tx.Model(model.User{}).
			Where("id = ?", record.Identifier).
			Update("email_verified", time.Now()).
			Error
	})
}

// IssueReset purges the user's expired reset tokens, enforces the
// re-request cooldown and mints a fresh token.
func (t *Tokens) IssueReset(userID string) (*model.PasswordResetToken, error) {
	err := t.DB.
		Where("user_id = ? AND expires_at < ?", userID, time.Now()).
		Delete(model.PasswordResetToken{}).
		Error
	if err != nil {
		return nil, err
	}

	cooldown := time.Duration(viper.GetInt("limits.reset_cooldown_minutes")) * time.Minute
	if cooldown == 0 {
		cooldown = 15 * time.Minute
	}

	var recent int64
	err = t.DB.
		Model(model.PasswordResetToken{}).
		Where("user_id = ? AND used = ? AND created_at > ?", userID, false, time.Now().Add(-cooldown)).
		Count(&recent).
		Error
	if err != nil {
		return nil, err
	}

	if recent > 0 {
		return nil, ErrResetCooldown
	}

	token, err := security.GenerateToken()
	if err != nil {
		return nil, err
	}

	record := &model.PasswordResetToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ResetTokenTTL),
		CreatedAt: time.Now(),
	}

	if err := t.DB.Create(record).Error; err != nil {
		return nil, err
	}

	return record, nil
}

// ConsumeReset marks the token used and swaps the user's password
// hash in one transaction, with the same double-consume detection as
// ConsumeVerification.
func (t *Tokens) ConsumeReset(token, newHash string) error {
	var record model.PasswordResetToken

	err := t.DB.Where("token = ?", token).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenInvalid
		}

		return err
	}

	if record.Used {
		return ErrTokenUsed
	}

	if time.Now().After(record.ExpiresAt) {
		if err := t.DB.Where("token = ?", token).Delete(model.PasswordResetToken{}).Error; err != nil {
			zap.L().Error("Failed to delete expired reset token", zap.Error(err))
		}

		return ErrTokenExpired
	}

	return t.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(model.PasswordResetToken{}).
			Where("token = ? AND used = ?", token, false).
			Updates(map[string]any{
				"used":    true,
				"used_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrTokenUsed
		}

		return tx.Model(model.User{}).
			Where("id = ?", record.UserID).
			Update("password_hash", newHash).
			Error
	})
}
