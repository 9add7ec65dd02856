// Package app assembles the repositories and services behind the HTTP API.
package app

import (
	"errors"
	"fmt"

	"github.com/angelmondragon/grocer-backend/internal/items"
	"github.com/angelmondragon/grocer-backend/internal/memberships"
	"github.com/angelmondragon/grocer-backend/internal/repo"
	"github.com/angelmondragon/grocer-backend/internal/sessions"
	"github.com/angelmondragon/grocer-backend/internal/stores"
	"github.com/angelmondragon/grocer-backend/internal/users"
	"github.com/angelmondragon/grocer-backend/pkg/db"
)

type Services struct {
	Sessions sessions.Service
	Stores   stores.Service
	Items    items.Service
}

// NewServices builds every domain service on one database client. opts apply
// to all repositories.
func NewServices(client *db.Client, opts ...repo.Option) (*Services, error) {
	if client == nil {
		return nil, errors.New("db client required")
	}
	conn := client.DB()

	sessionsRepo := sessions.NewRepository(conn, opts...)
	usersRepo := users.NewRepository(conn, opts...)
	membershipsRepo := memberships.NewRepository(conn, opts...)
	storesRepo := stores.NewRepository(conn, opts...)
	itemsRepo := items.NewRepository(conn, opts...)

	sessionSvc, err := sessions.NewService(sessionsRepo, usersRepo, membershipsRepo, client, sessions.BindRepositories(usersRepo, membershipsRepo))
	if err != nil {
		return nil, fmt.Errorf("sessions service: %w", err)
	}
	storeSvc, err := stores.NewService(storesRepo, sessionsRepo, membershipsRepo, client)
	if err != nil {
		return nil, fmt.Errorf("stores service: %w", err)
	}
	itemSvc, err := items.NewService(itemsRepo, membershipsRepo, client)
	if err != nil {
		return nil, fmt.Errorf("items service: %w", err)
	}

	return &Services{Sessions: sessionSvc, Stores: storeSvc, Items: itemSvc}, nil
}
