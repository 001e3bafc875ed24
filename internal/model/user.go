package model

import "time"

type User struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	Email          string      `gorm:"not null;uniqueIndex" json:"email"`
	Name           string      `json:"name"`
	TelegramChatID *int64      `json:"telegram_chat_id"`
	Watchlists     []Watchlist `gorm:"foreignKey:UserID" json:"watchlists,omitempty"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasTelegram reports whether alerts can be delivered to the user.
func (u User) HasTelegram() bool {
	return u.TelegramChatID != nil
}
