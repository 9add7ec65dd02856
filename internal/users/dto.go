package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/grocer-backend/pkg/db/models"
)

// UserDTO is the transport shape of a participant.
type UserDTO struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name string
}

// ToModel trims the display name and builds the row to insert.
func (dto CreateUserDTO) ToModel(now time.Time) *models.User {
	return &models.User{
		Name:      strings.TrimSpace(dto.Name),
		CreatedAt: now,
	}
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		UserID:    u.UserID,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
