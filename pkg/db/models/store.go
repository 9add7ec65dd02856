package models

import (
	"time"

	"github.com/angelmondragon/grocer-backend/pkg/types"
)

// Store is a named shopping list scoped to a session. TotalPrice is entered
// by users and never derived from the store's items.
type Store struct {
	StoreID    int64       `gorm:"column:store_id;primaryKey;autoIncrement"`
	Name       string      `gorm:"column:name;not null"`
	SessionID  string      `gorm:"column:session_id;not null"`
	CreatedBy  int64       `gorm:"column:created_by;not null"`
	CreatedAt  time.Time   `gorm:"column:created_at;not null"`
	TotalPrice types.Price `gorm:"column:total_price"`
}

func (Store) TableName() string { return "stores" }
