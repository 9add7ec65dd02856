package items

import (
	"context"
	"strings"

	"github.com/angelmondragon/grocer-backend/internal/repo"
	"github.com/angelmondragon/grocer-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/grocer-backend/pkg/db/types"
	"github.com/angelmondragon/grocer-backend/pkg/types"
	"gorm.io/gorm"
)

const itemProjection = `i.item_id, i.name, i.description, si.quantity, si.price, si.is_checked,
	si.added_by, u_added.name AS added_by_name, si.added_at,
	si.last_updated_at, si.last_updated_by, u_updated.name AS last_updated_by_name`

// Repository persists the shared catalog and each store's item rows.
type Repository struct {
	base repo.Base
}

// NewRepository binds a GORM DB to item operations.
func NewRepository(db *gorm.DB, opts ...repo.Option) *Repository {
	return &Repository{base: repo.NewBase(db, opts...)}
}

// WithTx returns a repository that runs on the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.Tx(tx)}
}

func (r *Repository) joined(ctx context.Context) *gorm.DB {
	return r.base.DB(ctx).
		Table("store_items AS si").
		Select(itemProjection).
		Joins("JOIN items i ON si.item_id = i.item_id").
		Joins("JOIN users u_added ON si.added_by = u_added.user_id").
		Joins("LEFT JOIN users u_updated ON si.last_updated_by = u_updated.user_id")
}

// StoreExists reports whether a store row exists.
func (r *Repository) StoreExists(ctx context.Context, storeID int64) (bool, error) {
	var count int64
	if err := r.base.DB(ctx).Model(&models.Store{}).Where("store_id = ?", storeID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListForStore returns a store's items, most recently added first.
func (r *Repository) ListForStore(ctx context.Context, storeID int64) ([]ItemDTO, error) {
	rows := []ItemDTO{}
	if err := r.joined(ctx).
		Where("si.store_id = ?", storeID).
		Order("si.added_at DESC").
		Order("si.item_id DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindForStore loads one joined item row.
func (r *Repository) FindForStore(ctx context.Context, storeID, itemID int64) (*ItemDTO, error) {
	var rows []ItemDTO
	if err := r.joined(ctx).
		Where("si.store_id = ? AND si.item_id = ?", storeID, itemID).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// FindCatalogByName looks an item up case-insensitively.
func (r *Repository) FindCatalogByName(ctx context.Context, name string) (*models.Item, error) {
	var item models.Item
	if err := r.base.DB(ctx).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		Order("item_id ASC").
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateCatalogItem inserts a new shared catalog row.
func (r *Repository) CreateCatalogItem(ctx context.Context, name string, description *string) (*models.Item, error) {
	item := &models.Item{
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   r.base.Now(),
	}
	if err := r.base.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// InsertStoreItem puts a catalog item on a store's list, unchecked.
func (r *Repository) InsertStoreItem(ctx context.Context, storeID, itemID int64, quantity int, price types.Price, userID int64) error {
	now := r.base.Now()
	row := &models.StoreItem{
		StoreID:       storeID,
		ItemID:        itemID,
		Quantity:      quantity,
		Price:         price,
		IsChecked:     false,
		AddedBy:       userID,
		AddedAt:       now,
		LastUpdatedAt: now,
		LastUpdatedBy: &userID,
	}
	return r.base.DB(ctx).Create(row).Error
}

// UpdateCatalogItem rewrites the non-empty name and description. It changes the
// item for every store that references it. A rename onto another item's name is
// not merged; FindCatalogByName then resolves to the lower item_id.
func (r *Repository) UpdateCatalogItem(ctx context.Context, itemID int64, name, description *string) error {
	cols := map[string]any{}
	if name != nil && strings.TrimSpace(*name) != "" {
		cols["name"] = strings.TrimSpace(*name)
	}
	if description != nil && *description != "" {
		cols["description"] = *description
	}
	if len(cols) == 0 {
		return nil
	}
	return r.base.DB(ctx).
		Model(&models.Item{}).
		Where("item_id = ?", itemID).
		UpdateColumns(cols).Error
}

// UpdateStoreItem writes only the supplied per-store columns and always stamps
// last_updated_at/last_updated_by. It returns the number of rows matched.
func (r *Repository) UpdateStoreItem(ctx context.Context, storeID, itemID int64, in UpdateItemInput) (int64, error) {
	cols := map[string]any{
		"last_updated_at": r.base.Now(),
		"last_updated_by": in.UserID,
	}
	if in.Quantity != nil {
		cols["quantity"] = *in.Quantity
	}
	if in.Price.Valid {
		cols["price"] = in.Price.Value
	}
	if in.IsChecked != nil {
		cols["is_checked"] = dbtypes.Flag(*in.IsChecked)
	}
	res := r.base.DB(ctx).
		Model(&models.StoreItem{}).
		Where("store_id = ? AND item_id = ?", storeID, itemID).
		UpdateColumns(cols)
	return res.RowsAffected, res.Error
}

// RemoveFromStore deletes the store's row only; the catalog item stays.
func (r *Repository) RemoveFromStore(ctx context.Context, storeID, itemID int64) (int64, error) {
	res := r.base.DB(ctx).
		Where("store_id = ? AND item_id = ?", storeID, itemID).
		Delete(&models.StoreItem{})
	return res.RowsAffected, res.Error
}
