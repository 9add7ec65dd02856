package grocerclient

import (
	"time"

	"github.com/angelmondragon/grocer-backend/pkg/types"
)

type Session struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
}

type User struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Membership struct {
	SessionID string    `json:"session_id"`
	UserID    int64     `json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// JoinResult reports the membership a join produced. Created is false when
// the user was already a member.
type JoinResult struct {
	Membership Membership `json:"membership"`
	User       User       `json:"user"`
	Created    bool       `json:"created"`
}

type Store struct {
	StoreID       int64       `json:"store_id"`
	Name          string      `json:"name"`
	SessionID     string      `json:"session_id"`
	CreatedBy     int64       `json:"created_by"`
	CreatedByName *string     `json:"created_by_name"`
	CreatedAt     time.Time   `json:"created_at"`
	TotalPrice    types.Price `json:"total_price"`
}

type Item struct {
	ItemID            int64       `json:"item_id"`
	Name              string      `json:"name"`
	Description       *string     `json:"description"`
	Quantity          int         `json:"quantity"`
	Price             types.Price `json:"price"`
	IsChecked         bool        `json:"is_checked"`
	AddedBy           int64       `json:"added_by"`
	AddedByName       string      `json:"added_by_name"`
	AddedAt           time.Time   `json:"added_at"`
	LastUpdatedAt     time.Time   `json:"last_updated_at"`
	LastUpdatedBy     *int64      `json:"last_updated_by"`
	LastUpdatedByName *string     `json:"last_updated_by_name"`
}

type CreateStoreInput struct {
	Name       string      `json:"name"`
	SessionID  string      `json:"sessionId"`
	UserID     int64       `json:"userId"`
	TotalPrice types.Price `json:"totalPrice"`
}

// UpdateStoreInput renames a store. A nil TotalPrice leaves the total alone;
// a pointer to a null Price clears it.
type UpdateStoreInput struct {
	Name       string       `json:"name"`
	TotalPrice *types.Price `json:"totalPrice,omitempty"`
	UserID     int64        `json:"userId"`
}

type AddItemInput struct {
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Quantity    *int        `json:"quantity,omitempty"`
	Price       types.Price `json:"price"`
	UserID      int64       `json:"userId"`
}

// UpdateItemInput sends only the non-nil fields. Name and Description change
// the shared catalog entry for every store that lists it.
type UpdateItemInput struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	Quantity    *int         `json:"quantity,omitempty"`
	Price       *types.Price `json:"price,omitempty"`
	IsChecked   *bool        `json:"is_checked,omitempty"`
	UserID      int64        `json:"userId"`
}
