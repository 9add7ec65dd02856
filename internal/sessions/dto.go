package sessions

import (
	"time"

	"github.com/angelmondragon/grocer-backend/internal/memberships"
	"github.com/angelmondragon/grocer-backend/internal/users"
	"github.com/angelmondragon/grocer-backend/pkg/db/models"
)

// SessionDTO is the transport shape of a session row.
type SessionDTO struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
}

// CreateSessionInput carries a client generated id and its expiry.
type CreateSessionInput struct {
	SessionID string
	ExpiresAt time.Time
}

// UpdateSessionInput holds the only writable session columns. Nil fields are
// left untouched.
type UpdateSessionInput struct {
	ExpiresAt *time.Time
	IsActive  *bool
}

// Empty reports whether no writable field was supplied.
func (in UpdateSessionInput) Empty() bool {
	return in.ExpiresAt == nil && in.IsActive == nil
}

// JoinSessionInput identifies the participant joining a session, either an
// existing user by id or a new one by name.
type JoinSessionInput struct {
	Name   string
	UserID *int64
}

// JoinResult describes the membership produced by a join.
type JoinResult struct {
	Membership memberships.MembershipDTO `json:"membership"`
	User       users.UserDTO             `json:"user"`
	Created    bool                      `json:"created"`
}

func FromModel(m *models.Session) *SessionDTO {
	if m == nil {
		return nil
	}
	return &SessionDTO{
		SessionID: m.SessionID,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		IsActive:  m.IsActive.Bool(),
	}
}

func fromModels(rows []models.Session) []SessionDTO {
	out := make([]SessionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
