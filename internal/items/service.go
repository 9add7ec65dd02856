package items

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
	msgAddRequired     = "Name and user ID are required"
	msgUserRequired    = "User ID is required"
	msgAddForbidden    = "Unauthorized to add items to this store"
	msgUpdateForbidden = "Unauthorized to update this item"
	msgDeleteForbidden = "Unauthorized to delete this item"
	msgStoreNotFound   = "Store not found"
	msgItemNotFound    = "Item not found"

	defaultQuantity = 1
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type itemRepository interface {
	StoreExists(ctx context.Context, storeID int64) (bool, error)
	ListForStore(ctx context.Context, storeID int64) ([]ItemDTO, error)
	FindForStore(ctx context.Context, storeID, itemID int64) (*ItemDTO, error)
	FindCatalogByName(ctx context.Context, name string) (*models.Item, error)
	CreateCatalogItem(ctx context.Context, name string, description *string) (*models.Item, error)
	InsertStoreItem(ctx context.Context, storeID, itemID int64, quantity int, price types.Price, userID int64) error
	UpdateCatalogItem(ctx context.Context, itemID int64, name, description *string) error
	UpdateStoreItem(ctx context.Context, storeID, itemID int64, in UpdateItemInput) (int64, error)
	RemoveFromStore(ctx context.Context, storeID, itemID int64) (int64, error)
}

type accessChecker interface {
	CanAccessStore(ctx context.Context, storeID, userID int64) (bool, error)
}

// Service exposes a store's item list.
type Service interface {
	List(ctx context.Context, storeID int64) ([]ItemDTO, error)
	Get(ctx context.Context, storeID, itemID int64) (*ItemDTO, error)
	Add(ctx context.Context, storeID int64, input AddItemInput) (*ItemDTO, error)
	Update(ctx context.Context, storeID, itemID int64, input UpdateItemInput) (*ItemDTO, error)
	Remove(ctx context.Context, storeID, itemID, userID int64) error
}

type service struct {
	repo    itemRepository
	access  accessChecker
	tx      txRunner
	repoFor func(tx *gorm.DB) itemRepository
}

// NewService builds an item service. Multi-statement writes run on tx.
func NewService(repo *Repository, access accessChecker, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	return newService(repo, access, tx, func(tx *gorm.DB) itemRepository {
		return repo.WithTx(tx)
	})
}

func newService(repo itemRepository, access accessChecker, tx txRunner, repoFor func(tx *gorm.DB) itemRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if access == nil {
		return nil, fmt.Errorf("access checker required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repoFor == nil {
		return nil, fmt.Errorf("transaction repository binder required")
	}
	return &service{repo: repo, access: access, tx: tx, repoFor: repoFor}, nil
}

func (s *service) List(ctx context.Context, storeID int64) ([]ItemDTO, error) {
	exists, err := s.repo.StoreExists(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Internal(err, "load store")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgStoreNotFound)
	}
	rows, err := s.repo.ListForStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Internal(err, "list items")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, storeID, itemID int64) (*ItemDTO, error) {
	item, err := s.repo.FindForStore(ctx, storeID, itemID)
	if err != nil {
		return nil, itemNotFoundOrInternal(err, "load item")
	}
	return item, nil
}

// Add reuses a catalog item whose name matches case-insensitively, otherwise
// creates one. The catalog insert and the store row commit together.
func (s *service) Add(ctx context.Context, storeID int64, input AddItemInput) (*ItemDTO, error) {
	if strings.TrimSpace(input.Name) == "" || input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgAddRequired)
	}
	quantity := defaultQuantity
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	price := input.Price
	if price.Valid && price.Decimal.IsZero() {
		price = types.Price{}
	}

	if err := s.authorize(ctx, storeID, input.UserID, msgAddForbidden); err != nil {
		return nil, err
	}

	var added *ItemDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)

		item, err := repo.FindCatalogByName(ctx, input.Name)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item, err = repo.CreateCatalogItem(ctx, input.Name, input.Description)
			if err != nil {
				return pkgerrors.Internal(err, "create catalog item")
			}
		case err != nil:
			return pkgerrors.Internal(err, "find catalog item")
		}

		if err := repo.InsertStoreItem(ctx, storeID, item.ItemID, quantity, price, input.UserID); err != nil {
			return pkgerrors.Internal(err, "add item to store")
		}

		added, err = repo.FindForStore(ctx, storeID, item.ItemID)
		if err != nil {
			return pkgerrors.Internal(err, "reload item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// Update checks access before existence. A zero-row store item update rolls
// back any catalog change made in the same call.
func (s *service) Update(ctx context.Context, storeID, itemID int64, input UpdateItemInput) (*ItemDTO, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgUserRequired)
	}
	if err := s.authorize(ctx, storeID, input.UserID, msgUpdateForbidden); err != nil {
		return nil, err
	}

	var updated *ItemDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)

		if input.touchesCatalog() {
			if err := repo.UpdateCatalogItem(ctx, itemID, input.Name, input.Description); err != nil {
				return pkgerrors.Internal(err, "update catalog item")
			}
		}

		affected, err := repo.UpdateStoreItem(ctx, storeID, itemID, input)
		if err != nil {
			return pkgerrors.Internal(err, "update store item")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
		}

		updated, err = repo.FindForStore(ctx, storeID, itemID)
		if err != nil {
			return itemNotFoundOrInternal(err, "reload item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes the store's row. Catalog items are never deleted.
func (s *service) Remove(ctx context.Context, storeID, itemID, userID int64) error {
	if userID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, msgUserRequired)
	}
	if err := s.authorize(ctx, storeID, userID, msgDeleteForbidden); err != nil {
		return err
	}
	affected, err := s.repo.RemoveFromStore(ctx, storeID, itemID)
	if err != nil {
		return pkgerrors.Internal(err, "remove item")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}
	return nil
}

func (s *service) authorize(ctx context.Context, storeID, userID int64, forbiddenMsg string) error {
	ok, err := s.access.CanAccessStore(ctx, storeID, userID)
	if err != nil {
		return pkgerrors.Internal(err, "check store access")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, forbiddenMsg)
	}
	return nil
}

func itemNotFoundOrInternal(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}
	return pkgerrors.Internal(err, op)
}
