package models

import (
	"time"

	dbtypes "github.com/angelmondragon/grocer-backend/pkg/db/types"
	"github.com/angelmondragon/grocer-backend/pkg/types"
)

// StoreItem is the per-store state of a catalog item.
type StoreItem struct {
	StoreID       int64        `gorm:"column:store_id;primaryKey;autoIncrement:false"`
	ItemID        int64        `gorm:"column:item_id;primaryKey;autoIncrement:false"`
	Quantity      int          `gorm:"column:quantity;not null"`
	Price         types.Price  `gorm:"column:price"`
	IsChecked     dbtypes.Flag `gorm:"column:is_checked;not null"`
	AddedBy       int64        `gorm:"column:added_by;not null"`
	AddedAt       time.Time    `gorm:"column:added_at;not null"`
	LastUpdatedAt time.Time    `gorm:"column:last_updated_at;not null"`
	LastUpdatedBy *int64       `gorm:"column:last_updated_by"`
}

func (StoreItem) TableName() string { return "store_items" }
