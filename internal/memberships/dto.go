package memberships

import (
	"time"

	"github.com/angelmondragon/grocer-backend/pkg/db/models"
)

// MembershipDTO is the transport shape for a raw session_users row.
type MembershipDTO struct {
	SessionID string    `json:"session_id"`
	UserID    int64     `json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// SessionUserDTO mixes membership metadata with the member's name.
type SessionUserDTO struct {
	SessionID string    `json:"session_id" gorm:"column:session_id"`
	UserID    int64     `json:"user_id" gorm:"column:user_id"`
	Name      string    `json:"name" gorm:"column:name"`
	JoinedAt  time.Time `json:"joined_at" gorm:"column:joined_at"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.SessionUser) *MembershipDTO {
	if m == nil {
		return nil
	}
	return &MembershipDTO{
		SessionID: m.SessionID,
		UserID:    m.UserID,
		JoinedAt:  m.JoinedAt,
	}
}
