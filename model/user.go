// Package model defines database models
package model

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID            string     `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"not null" json:"name"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  *string    `json:"-"` // nil for OAuth-only accounts
	Role          string     `gorm:"default:USER" json:"role"`
	Image         *string    `json:"image"`
	EmailVerified *time.Time `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	Avatars  []Avatar  `gorm:"foreignKey:UserID" json:"-"`
	Messages []Message `gorm:"foreignKey:UserID" json:"-"`
}
