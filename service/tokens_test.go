package service

import (
	"errors"
	"testing"
	"time"

	"bitwise74/avatar-api/model"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestVerificationTokenLifecycle(t *testing.T) {
	d := testDB(t)
	tokens := NewTokens(d)
	user := seedUser(t, d, false)

	record, err := tokens.IssueVerification(user.ID)
	require.NoError(t, err)
	assert.Len(t, record.Token, 64)

	require.NoError(t, tokens.ConsumeVerification(record.Token))

	var fresh model.User
	require.NoError(t, d.First(&fresh, "id = ?", user.ID).Error)
	assert.NotNil(t, fresh.EmailVerified)

	// a second consume must be reported as already used, not invalid
	assert.ErrorIs(t, tokens.ConsumeVerification(record.Token), ErrTokenUsed)
}

func TestConsumeVerificationUnknownToken(t *testing.T) {
	d := testDB(t)
	tokens := NewTokens(d)

	assert.ErrorIs(t, tokens.ConsumeVerification("no-such-token"), ErrTokenInvalid)
}

func TestConsumeVerificationExpiredToken(t *testing.T) {
	d := testDB(t)
	tokens := NewTokens(d)
	user := seedUser(t, d, false)

	record := &model.VerificationToken{
		Token:      "expired-token",
		Identifier: user.ID,
		ExpiresAt:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, d.Create(record).Error)

	assert.ErrorIs(t, tokens.ConsumeVerification(record.Token), ErrTokenExpired)

	// expired tokens are removed on lookup, so a retry can't tell the
	// token ever existed
	assert.ErrorIs(t, tokens.ConsumeVerification(record.Token), ErrTokenInvalid)

	var fresh model.User
	require.NoError(t, d.First(&fresh, "id = ?", user.ID).Error)
	assert.Nil(t, fresh.EmailVerified)
}

func TestResetTokenLifecycle(t *testing.T) {
	d := testDB(t)
	tokens := NewTokens(d)
	user := seedUser(t, d, true)

	record, err := tokens.IssueReset(user.ID)
	require.NoError(t, err)

	require.NoError(t, tokens.ConsumeReset(record.Token, "new-hash"))

	var fresh model.User
	require.NoError(t, d.First(&fresh, "id = ?", user.ID).Error)
	require.NotNil(t, fresh.PasswordHash)
	assert.Equal(t, "new-hash", *fresh.PasswordHash)

	assert.ErrorIs(t, tokens.ConsumeReset(record.Token, "other-hash"), ErrTokenUsed)

	// the second attempt must not overwrite the password again
	require.NoError(t, d.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, "new-hash", *fresh.PasswordHash)
}

func TestIssueResetCooldown(t *testing.T) {
	viper.Set("limits.reset_cooldown_minutes", 15)

	d := testDB(t)
	tokens := NewTokens(d)
	user := seedUser(t, d, true)

	_, err := tokens.IssueReset(user.ID)
	require.NoError(t, err)

	_, err = tokens.IssueReset(user.ID)
	assert.ErrorIs(t, err, ErrResetCooldown)
}

func TestIssueResetIgnoresExpiredTokens(t *testing.T) {
	viper.Set("limits.reset_cooldown_minutes", 15)

	d := testDB(t)
	tokens := NewTokens(d)
	user := seedUser(t, d, true)

	stale := &model.PasswordResetToken{
		Token:     "stale-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, d.Create(stale).Error)

	_, err := tokens.IssueReset(user.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, d.Model(model.PasswordResetToken{}).Where("token = ?", stale.Token).Count(&count).Error)
	assert.Zero(t, count, "expired tokens should be purged on issue")
}

func TestConsumeVerificationLogsFailedExpiredDelete(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	defer zap.ReplaceGlobals(prev)

	d := testDB(t)
	tokens := NewTokens(d)
	user := seedUser(t, d, false)

	record := &model.VerificationToken{
		Token:      "expired-token",
		Identifier: user.ID,
		ExpiresAt:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, d.Create(record).Error)

	// make every delete on this handle fail
	require.NoError(t, d.Callback().Delete().Before("gorm:delete").Register("fail_delete", func(tx *gorm.DB) {
		tx.AddError(errors.New("disk on fire"))
	}))

	// the caller still sees the expired error, but the failed cleanup
	// must leave a trace in the log
	assert.ErrorIs(t, tokens.ConsumeVerification(record.Token), ErrTokenExpired)
	assert.Equal(t, 1, logs.FilterMessage("Failed to delete expired verification token").Len())
}

func TestConsumeResetExpiredToken(t *testing.T) {
	d := testDB(t)
	tokens := NewTokens(d)
	user := seedUser(t, d, true)

	record := &model.PasswordResetToken{
		Token:     "expired-reset",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, d.Create(record).Error)

	assert.ErrorIs(t, tokens.ConsumeReset(record.Token, "new-hash"), ErrTokenExpired)
}
