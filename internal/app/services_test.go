package app

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/grocer-backend/internal/items"
	"github.com/angelmondragon/grocer-backend/internal/sessions"
	"github.com/angelmondragon/grocer-backend/internal/stores"
	"github.com/angelmondragon/grocer-backend/pkg/migrate/migratetest"
	"github.com/stretchr/testify/require"
)

func TestNewServicesRequiresClient(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)
}

func TestNewServicesWiresEndToEnd(t *testing.T) {
	ctx := context.Background()
	svcs, err := NewServices(migratetest.OpenSQLite(t, "app"))
	require.NoError(t, err)

	_, err = svcs.Sessions.Create(ctx, sessions.CreateSessionInput{
		SessionID: "abc-123",
		ExpiresAt: time.Now().UTC().Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)
	joined, err := svcs.Sessions.Join(ctx, "abc-123", sessions.JoinSessionInput{Name: "Ana"})
	require.NoError(t, err)

	store, err := svcs.Stores.Create(ctx, stores.CreateStoreInput{Name: "Costco", SessionID: "abc-123", UserID: joined.User.UserID})
	require.NoError(t, err)

	qty := 2
	item, err := svcs.Items.Add(ctx, store.StoreID, items.AddItemInput{Name: "Milk", Quantity: &qty, UserID: joined.User.UserID})
	require.NoError(t, err)
	require.Equal(t, 2, item.Quantity)
	require.False(t, item.IsChecked.Bool())
}
