package model

import "time"

// PasswordResetToken is single use like VerificationToken. CreatedAt
// drives the re-request cooldown window.
type PasswordResetToken struct {
	Token     string    `gorm:"primaryKey"`
	UserID    string    `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"default:false"`
	UsedAt    *time.Time
	CreatedAt time.Time
}
