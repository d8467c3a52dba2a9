package model

import "time"

// VerificationToken guards the email verification step. A token is
// single use: it is marked used in the same transaction that stamps
// the owning user as verified, so a concurrent consumer observes
// "already used" instead of repeating the side effect.
type VerificationToken struct {
	Token      string    `gorm:"primaryKey"`
	Identifier string    `gorm:"index;not null"` // owning user ID
	ExpiresAt  time.Time `gorm:"not null"`
	Used       bool      `gorm:"default:false"`
	UsedAt     *time.Time
	CreatedAt  time.Time
}
