package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/grocer-backend/api/responses"
	"github.com/angelmondragon/grocer-backend/api/validators"
	"github.com/angelmondragon/grocer-backend/internal/sessions"
	dbtypes "github.com/angelmondragon/grocer-backend/pkg/db/types"
	"github.com/angelmondragon/grocer-backend/pkg/logger"
)

const msgSessionDeleted = "Session deleted successfully"

// SessionList returns every session.
func SessionList(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SessionListActive returns sessions that are active and not yet expired.
func SessionListActive(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func SessionGet(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := sessionCtx(r, logg)
		session, err := svc.GetByID(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

type sessionCreateRequest struct {
	SessionID string     `json:"sessionId"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (req sessionCreateRequest) toInput() sessions.CreateSessionInput {
	in := sessions.CreateSessionInput{SessionID: req.SessionID}
	if req.ExpiresAt != nil {
		in.ExpiresAt = *req.ExpiresAt
	}
	return in
}

func SessionCreate(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body sessionCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.Create(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, session)
	}
}

// sessionUpdateRequest lists the writable session columns.
type sessionUpdateRequest struct {
	ExpiresAt *time.Time    `json:"expires_at"`
	IsActive  *dbtypes.Flag `json:"is_active"`
}

func (req sessionUpdateRequest) toInput() sessions.UpdateSessionInput {
	in := sessions.UpdateSessionInput{ExpiresAt: req.ExpiresAt}
	if req.IsActive != nil {
		active := req.IsActive.Bool()
		in.IsActive = &active
	}
	return in
}

// SessionUpdate applies a partial update. It writes null when the body names no
// writable column.
func SessionUpdate(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := sessionCtx(r, logg)
		var body sessionUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		session, err := svc.Update(ctx, id, body.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

func SessionDelete(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := sessionCtx(r, logg)
		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, msgSessionDeleted)
	}
}

func SessionMembers(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := sessionCtx(r, logg)
		members, err := svc.ListMembers(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, members)
	}
}

type sessionJoinRequest struct {
	Name   string `json:"name"`
	UserID *int64 `json:"userId"`
}

// SessionJoin adds a participant to the session, creating the user from name
// when no user id is given. Joining twice returns the existing membership.
func SessionJoin(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := sessionCtx(r, logg)
		var body sessionJoinRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Join(ctx, id, sessions.JoinSessionInput{Name: body.Name, UserID: body.UserID})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if result.Created {
			responses.WriteCreated(w, result)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// sessionCtx reads the session id route param and tags the request logger with it.
func sessionCtx(r *http.Request, logg *logger.Logger) (context.Context, string) {
	id := strings.TrimSpace(chi.URLParam(r, "sessionId"))
	ctx := r.Context()
	if logg != nil {
		ctx = logg.WithSessionID(ctx, id)
	}
	return ctx, id
}
