package memberships

import (
	"context"
	"errors"

	"github.com/angelmondragon/grocer-backend/internal/repo"
	"github.com/angelmondragon/grocer-backend/pkg/db"
	"github.com/angelmondragon/grocer-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository answers and records who belongs to which session.
type Repository struct {
	base repo.Base
}

// NewRepository binds the membership repository to a GORM connection.
func NewRepository(conn *gorm.DB, opts ...repo.Option) *Repository {
	return &Repository{base: repo.NewBase(conn, opts...)}
}

// WithTx returns a repository that runs on the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.Tx(tx)}
}

// IsMember reports whether userID has a session_users row for sessionID.
func (r *Repository) IsMember(ctx context.Context, sessionID string, userID int64) (bool, error) {
	var count int64
	err := r.base.DB(ctx).
		Model(&models.SessionUser{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CanAccessStore derives access through the store's session. A store that does
// not exist yields false, same as a non-member.
func (r *Repository) CanAccessStore(ctx context.Context, storeID, userID int64) (bool, error) {
	var count int64
	err := r.base.DB(ctx).
		Table("stores AS s").
		Joins("JOIN session_users su ON s.session_id = su.session_id").
		Where("s.store_id = ? AND su.user_id = ?", storeID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Get loads a single membership.
func (r *Repository) Get(ctx context.Context, sessionID string, userID int64) (*models.SessionUser, error) {
	var m models.SessionUser
	if err := r.base.DB(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Join records userID as a member of sessionID. Joining twice returns the
// existing row and created=false.
func (r *Repository) Join(ctx context.Context, sessionID string, userID int64) (*models.SessionUser, bool, error) {
	existing, err := r.Get(ctx, sessionID, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	m := &models.SessionUser{SessionID: sessionID, UserID: userID, JoinedAt: r.base.Now()}
	if err := r.base.DB(ctx).Create(m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			existing, getErr := r.Get(ctx, sessionID, userID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return m, true, nil
}

// ListSessionUsers returns every member of a session with their names, oldest first.
func (r *Repository) ListSessionUsers(ctx context.Context, sessionID string) ([]SessionUserDTO, error) {
	var rows []SessionUserDTO
	err := r.base.DB(ctx).
		Table("session_users AS su").
		Select("su.session_id, su.user_id, u.name, su.joined_at").
		Joins("JOIN users u ON u.user_id = su.user_id").
		Where("su.session_id = ?", sessionID).
		Order("su.joined_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
