package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/grocer-backend/api/responses"
	"github.com/angelmondragon/grocer-backend/api/validators"
	"github.com/angelmondragon/grocer-backend/internal/items"
	"github.com/angelmondragon/grocer-backend/pkg/logger"
	"github.com/angelmondragon/grocer-backend/pkg/types"
)

const msgItemDeleted = "Item deleted successfully"

func ItemList(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, storeID, err := storeCtx(r, logg)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		rows, err := svc.List(ctx, storeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type itemCreateRequest struct {
	Name        string      `json:"name" validate:"required"`
	Description *string     `json:"description"`
	Quantity    *int        `json:"quantity"`
	Price       types.Price `json:"price"`
	UserID      int64       `json:"userId" validate:"required"`
}

func (itemCreateRequest) ValidationMessage() string { return "Name and user ID are required" }

// ItemCreate puts an item on the store's list, reusing a catalog entry with the
// same name when one exists.
func ItemCreate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, storeID, err := storeCtx(r, logg)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body itemCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		item, err := svc.Add(ctx, storeID, items.AddItemInput{
			Name:        body.Name,
			Description: body.Description,
			Quantity:    body.Quantity,
			Price:       body.Price,
			UserID:      body.UserID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, item)
	}
}

func ItemGet(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, storeID, itemID, err := itemCtx(r, logg)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		item, err := svc.Get(ctx, storeID, itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type itemUpdateRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Quantity    *int                `json:"quantity"`
	Price       types.NullablePrice `json:"price"`
	IsChecked   *bool               `json:"is_checked"`
	UserID      int64               `json:"userId" validate:"required"`
}

func (itemUpdateRequest) ValidationMessage() string { return "User ID is required" }

func (req itemUpdateRequest) toInput() items.UpdateItemInput {
	return items.UpdateItemInput{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		Price:       req.Price,
		IsChecked:   req.IsChecked,
		UserID:      req.UserID,
	}
}

func ItemUpdate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, storeID, itemID, err := itemCtx(r, logg)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body itemUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		item, err := svc.Update(ctx, storeID, itemID, body.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemDelete(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, storeID, itemID, err := itemCtx(r, logg)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body actorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Remove(ctx, storeID, itemID, body.UserID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, msgItemDeleted)
	}
}

func itemCtx(r *http.Request, logg *logger.Logger) (context.Context, int64, int64, error) {
	ctx, storeID, err := storeCtx(r, logg)
	if err != nil {
		return ctx, 0, 0, err
	}
	itemID, err := validators.PathID(r, "itemId")
	if err != nil {
		return ctx, 0, 0, err
	}
	if logg != nil {
		ctx = logg.WithField(ctx, "item_id", itemID)
	}
	return ctx, storeID, itemID, nil
}
