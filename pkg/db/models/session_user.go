package models

import "time"

// SessionUser links a user to a session and gates mutation rights.
type SessionUser struct {
	SessionID string    `gorm:"column:session_id;primaryKey" json:"session_id"`
	UserID    int64     `gorm:"column:user_id;primaryKey;autoIncrement:false" json:"user_id"`
	JoinedAt  time.Time `gorm:"column:joined_at;not null" json:"joined_at"`
}

func (SessionUser) TableName() string { return "session_users" }
