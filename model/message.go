package model

import "time"

const (
	MessageTypeUser = "user"
	MessageTypeAI   = "ai"
)

type Message struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"not null" json:"content"`
	Type      string    `gorm:"not null" json:"type"`
	Metadata  *string   `json:"metadata"`
	UserID    string    `gorm:"index;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
