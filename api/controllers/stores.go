package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/grocer-backend/api/responses"
	"github.com/angelmondragon/grocer-backend/api/validators"
	"github.com/angelmondragon/grocer-backend/internal/stores"
	"github.com/angelmondragon/grocer-backend/pkg/logger"
	"github.com/angelmondragon/grocer-backend/pkg/types"
)

const (
	msgStoreDeleted     = "Store deleted successfully"
	msgSessionIDMissing = "Session ID is required"
)

// StoreList returns the stores of the session named by ?sessionId, newest first.
func StoreList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.RequireQuery(r, "sessionId", msgSessionIDMissing)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, sessionID)
		}
		rows, err := svc.ListBySession(ctx, sessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type storeCreateRequest struct {
	Name       string      `json:"name" validate:"required"`
	SessionID  string      `json:"sessionId" validate:"required"`
	UserID     int64       `json:"userId" validate:"required"`
	TotalPrice types.Price `json:"totalPrice"`
}

func (storeCreateRequest) ValidationMessage() string {
	return "Store name, session ID, and user ID are required"
}

func StoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body storeCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, body.SessionID)
			ctx = logg.WithUserID(ctx, body.UserID)
		}
		store, err := svc.Create(ctx, stores.CreateStoreInput{
			Name:       body.Name,
			SessionID:  body.SessionID,
			UserID:     body.UserID,
			TotalPrice: body.TotalPrice,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, store)
	}
}

func StoreGet(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, storeID, err := storeCtx(r, logg)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		store, err := svc.GetByID(ctx, storeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

type storeUpdateRequest struct {
	Name       string              `json:"name" validate:"required"`
	TotalPrice types.NullablePrice `json:"totalPrice"`
	UserID     int64               `json:"userId" validate:"required"`
}

func (storeUpdateRequest) ValidationMessage() string {
	return "Store name and user ID are required"
}

func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, storeID, err := storeCtx(r, logg)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body storeUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		store, err := svc.Update(ctx, storeID, stores.UpdateStoreInput{
			Name:       body.Name,
			TotalPrice: body.TotalPrice,
			UserID:     body.UserID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// actorRequest is the body of deletes, which only name the acting user.
type actorRequest struct {
	UserID int64 `json:"userId" validate:"required"`
}

func (actorRequest) ValidationMessage() string { return "User ID is required" }

func StoreDelete(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, storeID, err := storeCtx(r, logg)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body actorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Delete(ctx, storeID, body.UserID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, msgStoreDeleted)
	}
}

func storeCtx(r *http.Request, logg *logger.Logger) (context.Context, int64, error) {
	ctx := r.Context()
	storeID, err := validators.PathID(r, "storeId")
	if err != nil {
		return ctx, 0, err
	}
	if logg != nil {
		ctx = logg.WithStoreID(ctx, storeID)
	}
	return ctx, storeID, nil
}
