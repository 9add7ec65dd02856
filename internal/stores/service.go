package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/grocer-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/grocer-backend/pkg/errors"
	"github.com/angelmondragon/grocer-backend/pkg/types"
	"gorm.io/gorm"
)

const (
	msgCreateRequired  = "Store name, session ID, and user ID are required"
	msgUpdateRequired  = "Store name and user ID are required"
	msgUserRequired    = "User ID is required"
	msgSessionRequired = "Session ID is required"
	msgInvalidSession  = "Invalid or expired session"
	msgNotMember       = "User is not part of this session"
	msgUpdateForbidden = "Unauthorized to update this store"
	msgDeleteForbidden = "Unauthorized to delete this store"
	msgStoreNotFound   = "Store not found"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type storeRepository interface {
	Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error)
	FindByID(ctx context.Context, id int64) (*StoreDTO, error)
	ListBySession(ctx context.Context, sessionID string) ([]StoreDTO, error)
	Update(ctx context.Context, id int64, name string, totalPrice types.NullablePrice) (int64, error)
}

// storeDeleter runs the two-statement delete on a transaction handle.
type storeDeleter interface {
	Delete(ctx context.Context, id int64) (int64, error)
}

type sessionLookup interface {
	FindLive(ctx context.Context, id string) (*models.Session, error)
}

type membershipsRepository interface {
	IsMember(ctx context.Context, sessionID string, userID int64) (bool, error)
	CanAccessStore(ctx context.Context, storeID, userID int64) (bool, error)
}

// Service exposes store operations.
type Service interface {
	GetByID(ctx context.Context, id int64) (*StoreDTO, error)
	ListBySession(ctx context.Context, sessionID string) ([]StoreDTO, error)
	Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error)
	Update(ctx context.Context, storeID int64, input UpdateStoreInput) (*StoreDTO, error)
	Delete(ctx context.Context, storeID, userID int64) error
}

type service struct {
	repo        storeRepository
	sessions    sessionLookup
	memberships membershipsRepository
	tx          txRunner
	deleterFor  func(tx *gorm.DB) storeDeleter
}

// NewService builds a store service with the provided repositories.
func NewService(repo *Repository, sessions sessionLookup, memberships membershipsRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return newService(repo, sessions, memberships, tx, func(tx *gorm.DB) storeDeleter {
		return repo.WithTx(tx)
	})
}

func newService(repo storeRepository, sessions sessionLookup, memberships membershipsRepository, tx txRunner, deleterFor func(tx *gorm.DB) storeDeleter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session lookup required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		sessions:    sessions,
		memberships: memberships,
		tx:          tx,
		deleterFor:  deleterFor,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgStoreNotFound)
		}
		return nil, pkgerrors.Internal(err, "load store")
	}
	return store, nil
}

func (s *service) ListBySession(ctx context.Context, sessionID string) ([]StoreDTO, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgSessionRequired)
	}
	stores, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Internal(err, "list stores")
	}
	return stores, nil
}

func (s *service) Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.SessionID) == "" || input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgCreateRequired)
	}

	if _, err := s.sessions.FindLive(ctx, input.SessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidSession)
		}
		return nil, pkgerrors.Internal(err, "load session")
	}

	member, err := s.memberships.IsMember(ctx, input.SessionID, input.UserID)
	if err != nil {
		return nil, pkgerrors.Internal(err, "check membership")
	}
	if !member {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, msgNotMember)
	}

	store, err := s.repo.Create(ctx, CreateStoreDTO{
		Name:       input.Name,
		SessionID:  input.SessionID,
		CreatedBy:  input.UserID,
		TotalPrice: input.TotalPrice,
	})
	if err != nil {
		return nil, pkgerrors.Internal(err, "create store")
	}
	return s.GetByID(ctx, store.StoreID)
}

// Update checks access before existence, so a missing store with a
// non-member caller is forbidden rather than not found.
func (s *service) Update(ctx context.Context, storeID int64, input UpdateStoreInput) (*StoreDTO, error) {
	if strings.TrimSpace(input.Name) == "" || input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgUpdateRequired)
	}
	if err := s.authorize(ctx, storeID, input.UserID, msgUpdateForbidden); err != nil {
		return nil, err
	}

	affected, err := s.repo.Update(ctx, storeID, input.Name, input.TotalPrice)
	if err != nil {
		return nil, pkgerrors.Internal(err, "update store")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgStoreNotFound)
	}
	return s.GetByID(ctx, storeID)
}

func (s *service) Delete(ctx context.Context, storeID, userID int64) error {
	if userID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, msgUserRequired)
	}
	if err := s.authorize(ctx, storeID, userID, msgDeleteForbidden); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.deleterFor(tx).Delete(ctx, storeID)
		if err != nil {
			return pkgerrors.Internal(err, "delete store")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, msgStoreNotFound)
		}
		return nil
	})
}

func (s *service) authorize(ctx context.Context, storeID, userID int64, forbiddenMsg string) error {
	ok, err := s.memberships.CanAccessStore(ctx, storeID, userID)
	if err != nil {
		return pkgerrors.Internal(err, "check store access")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, forbiddenMsg)
	}
	return nil
}
