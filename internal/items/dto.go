package items

import (
	"time"

	dbtypes "github.com/angelmondragon/grocer-backend/pkg/db/types"
	"github.com/angelmondragon/grocer-backend/pkg/types"
)

// ItemDTO is a catalog item joined with its per-store state and the names of
// the users who added and last touched it.
type ItemDTO struct {
	ItemID            int64        `json:"item_id" gorm:"column:item_id"`
	Name              string       `json:"name" gorm:"column:name"`
	Description       *string      `json:"description" gorm:"column:description"`
	Quantity          int          `json:"quantity" gorm:"column:quantity"`
	Price             types.Price  `json:"price" gorm:"column:price"`
	IsChecked         dbtypes.Flag `json:"is_checked" gorm:"column:is_checked"`
	AddedBy           int64        `json:"added_by" gorm:"column:added_by"`
	AddedByName       string       `json:"added_by_name" gorm:"column:added_by_name"`
	AddedAt           time.Time    `json:"added_at" gorm:"column:added_at"`
	LastUpdatedAt     time.Time    `json:"last_updated_at" gorm:"column:last_updated_at"`
	LastUpdatedBy     *int64       `json:"last_updated_by" gorm:"column:last_updated_by"`
	LastUpdatedByName *string      `json:"last_updated_by_name" gorm:"column:last_updated_by_name"`
}

// AddItemInput describes an item being put on a store's list. A nil Quantity
// defaults to one.
type AddItemInput struct {
	Name        string
	Description *string
	Quantity    *int
	Price       types.Price
	UserID      int64
}

// UpdateItemInput is a partial update. Name and Description change the shared
// catalog row; the rest only touch this store's row.
type UpdateItemInput struct {
	Name        *string
	Description *string
	Quantity    *int
	Price       types.NullablePrice
	IsChecked   *bool
	UserID      int64
}

func (in UpdateItemInput) touchesCatalog() bool {
	return (in.Name != nil && *in.Name != "") || (in.Description != nil && *in.Description != "")
}
