package models

import (
	"time"

	dbtypes "github.com/angelmondragon/grocer-backend/pkg/db/types"
)

// Session is a shareable, time-bounded collaboration scope.
type Session struct {
	SessionID string       `gorm:"column:session_id;primaryKey" json:"session_id"`
	CreatedAt time.Time    `gorm:"column:created_at;not null" json:"created_at"`
	ExpiresAt time.Time    `gorm:"column:expires_at" json:"expires_at"`
	IsActive  dbtypes.Flag `gorm:"column:is_active;not null" json:"is_active"`
}

func (Session) TableName() string { return "sessions" }

// LiveAt reports whether the session accepts new work at t.
func (s Session) LiveAt(t time.Time) bool {
	return s.IsActive.Bool() && t.Before(s.ExpiresAt)
}
