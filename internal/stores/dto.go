package stores

import (
	"strings"
	"time"

	"github.com/angelmondragon/grocer-backend/pkg/db/models"
	"github.com/angelmondragon/grocer-backend/pkg/types"
)

// StoreDTO is the joined store projection returned to clients.
type StoreDTO struct {
	StoreID       int64       `json:"store_id" gorm:"column:store_id"`
	Name          string      `json:"name" gorm:"column:name"`
	SessionID     string      `json:"session_id" gorm:"column:session_id"`
	CreatedBy     int64       `json:"created_by" gorm:"column:created_by"`
	CreatedByName *string     `json:"created_by_name" gorm:"column:created_by_name"`
	CreatedAt     time.Time   `json:"created_at" gorm:"column:created_at"`
	TotalPrice    types.Price `json:"total_price" gorm:"column:total_price"`
}

// CreateStoreDTO holds the data required by the repo to persist a new store.
type CreateStoreDTO struct {
	Name       string
	SessionID  string
	CreatedBy  int64
	TotalPrice types.Price
}

// ToModel converts the DTO into a GORM model stamped with now.
func (dto CreateStoreDTO) ToModel(now time.Time) *models.Store {
	return &models.Store{
		Name:       strings.TrimSpace(dto.Name),
		SessionID:  dto.SessionID,
		CreatedBy:  dto.CreatedBy,
		CreatedAt:  now,
		TotalPrice: dto.TotalPrice,
	}
}

// CreateStoreInput is the service level request to open a store.
type CreateStoreInput struct {
	Name       string
	SessionID  string
	UserID     int64
	TotalPrice types.Price
}

// UpdateStoreInput captures the allowed store fields for mutation. An absent
// TotalPrice keeps the stored value; an explicit null clears it.
type UpdateStoreInput struct {
	Name       string
	TotalPrice types.NullablePrice
	UserID     int64
}
