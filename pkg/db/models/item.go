package models

import "time"

// Item is a catalog entry shared by every store that references it.
type Item struct {
	ItemID      int64     `gorm:"column:item_id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (Item) TableName() string { return "items" }
