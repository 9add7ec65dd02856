package sessions

import (
	"context"
	"time"

	"github.com/angelmondragon/grocer-backend/internal/repo"
	"github.com/angelmondragon/grocer-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/grocer-backend/pkg/db/types"
	"gorm.io/gorm"
)

// Repository handles session persistence.
type Repository struct {
	base repo.Base
}

// NewRepository binds a GORM DB to session operations.
func NewRepository(db *gorm.DB, opts ...repo.Option) *Repository {
	return &Repository{base: repo.NewBase(db, opts...)}
}

// WithTx returns a repository that runs on the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.Tx(tx)}
}

// List returns every session.
func (r *Repository) List(ctx context.Context) ([]models.Session, error) {
	var rows []models.Session
	if err := r.base.DB(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a session by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := r.base.DB(ctx).First(&s, "session_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindLive loads a session only while it is active and unexpired.
func (r *Repository) FindLive(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := r.base.DB(ctx).
		Where("session_id = ? AND is_active = ? AND expires_at > ?", id, dbtypes.Flag(true), r.base.Now()).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts an active session. A duplicate id surfaces as the driver's
// primary key error.
func (r *Repository) Create(ctx context.Context, id string, expiresAt time.Time) (*models.Session, error) {
	s := &models.Session{
		SessionID: id,
		CreatedAt: r.base.Now(),
		ExpiresAt: expiresAt.UTC(),
		IsActive:  true,
	}
	if err := r.base.DB(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// Update writes the supplied columns and returns the number of rows matched.
func (r *Repository) Update(ctx context.Context, id string, in UpdateSessionInput) (int64, error) {
	cols := map[string]any{}
	if in.ExpiresAt != nil {
		cols["expires_at"] = in.ExpiresAt.UTC()
	}
	if in.IsActive != nil {
		cols["is_active"] = dbtypes.Flag(*in.IsActive)
	}
	if len(cols) == 0 {
		return 0, nil
	}
	res := r.base.DB(ctx).
		Model(&models.Session{}).
		Where("session_id = ?", id).
		UpdateColumns(cols)
	return res.RowsAffected, res.Error
}

// Delete removes the session row.
func (r *Repository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.base.DB(ctx).Where("session_id = ?", id).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

// ListActive returns the sessions that are flagged active and not yet expired.
func (r *Repository) ListActive(ctx context.Context) ([]models.Session, error) {
	var rows []models.Session
	if err := r.base.DB(ctx).
		Where("is_active = ? AND expires_at > ?", dbtypes.Flag(true), r.base.Now()).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeactivateExpired flips is_active off for every active session past expiry.
func (r *Repository) DeactivateExpired(ctx context.Context) (int64, error) {
	res := r.base.DB(ctx).
		Model(&models.Session{}).
		Where("is_active = ? AND expires_at <= ?", dbtypes.Flag(true), r.base.Now()).
		UpdateColumn("is_active", dbtypes.Flag(false))
	return res.RowsAffected, res.Error
}
