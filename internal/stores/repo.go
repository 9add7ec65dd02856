package stores

import (
	"context"
	"strings"

	"github.com/angelmondragon/grocer-backend/internal/repo"
	"github.com/angelmondragon/grocer-backend/pkg/db/models"
	"github.com/angelmondragon/grocer-backend/pkg/types"
	"gorm.io/gorm"
)

const storeProjection = "s.store_id, s.name, s.session_id, s.created_by, s.created_at, s.total_price, u.name AS created_by_name"

// Repository handles store persistence.
type Repository struct {
	base repo.Base
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB, opts ...repo.Option) *Repository {
	return &Repository{base: repo.NewBase(db, opts...)}
}

// WithTx returns a repository that runs on the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.Tx(tx)}
}

func (r *Repository) joined(ctx context.Context) *gorm.DB {
	return r.base.DB(ctx).
		Table("stores AS s").
		Select(storeProjection).
		Joins("LEFT JOIN users u ON s.created_by = u.user_id")
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error) {
	store := dto.ToModel(r.base.Now())
	if err := r.base.DB(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads the joined projection of one store.
func (r *Repository) FindByID(ctx context.Context, id int64) (*StoreDTO, error) {
	var rows []StoreDTO
	if err := r.joined(ctx).Where("s.store_id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// ListBySession returns a session's stores, newest first.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]StoreDTO, error) {
	rows := []StoreDTO{}
	if err := r.joined(ctx).
		Where("s.session_id = ?", sessionID).
		Order("s.created_at DESC").
		Order("s.store_id DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update renames the store and, when supplied, rewrites its total price.
func (r *Repository) Update(ctx context.Context, id int64, name string, totalPrice types.NullablePrice) (int64, error) {
	cols := map[string]any{"name": strings.TrimSpace(name)}
	if totalPrice.Valid {
		cols["total_price"] = totalPrice.Value
	}
	res := r.base.DB(ctx).
		Model(&models.Store{}).
		Where("store_id = ?", id).
		UpdateColumns(cols)
	return res.RowsAffected, res.Error
}

// Delete removes the store's item rows and then the store itself. Callers run
// it on a transaction so a missing store leaves nothing half deleted.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	conn := r.base.DB(ctx)
	if err := conn.Where("store_id = ?", id).Delete(&models.StoreItem{}).Error; err != nil {
		return 0, err
	}
	res := conn.Where("store_id = ?", id).Delete(&models.Store{})
	return res.RowsAffected, res.Error
}
