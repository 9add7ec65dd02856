package items

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/grocer-backend/internal/memberships"
	"github.com/angelmondragon/grocer-backend/pkg/config"
	"github.com/angelmondragon/grocer-backend/pkg/db"
	"github.com/angelmondragon/grocer-backend/pkg/db/models"
	"github.com/angelmondragon/grocer-backend/pkg/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openFileDB opens a file-backed database through db.New with the default
// pool size, the way cmd/api does.
func openFileDB(t *testing.T) *db.Client {
	t.Helper()
	ctx := context.Background()
	cfg := config.DBConfig{
		Driver:       config.DriverSQLite,
		DSN:          "file:" + filepath.Join(t.TempDir(), "grocer.db") + "?_foreign_keys=1",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	}
	client, err := db.New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	require.NoError(t, migrate.Up(ctx, sqlDB, config.DriverSQLite))
	return client
}

func TestConcurrentAddsOnFileDatabase(t *testing.T) {
	client := openFileDB(t)
	conn := client.DB()
	now := time.Now().UTC()

	require.NoError(t, conn.Create(&models.Session{SessionID: "busy", CreatedAt: now, ExpiresAt: now.Add(time.Hour), IsActive: true}).Error)
	ana := &models.User{Name: "Ana", CreatedAt: now}
	require.NoError(t, conn.Create(ana).Error)
	require.NoError(t, conn.Create(&models.SessionUser{SessionID: "busy", UserID: ana.UserID, JoinedAt: now}).Error)

	stores := make([]int64, 6)
	for i := range stores {
		s := &models.Store{Name: fmt.Sprintf("Store %d", i), SessionID: "busy", CreatedBy: ana.UserID, CreatedAt: now}
		require.NoError(t, conn.Create(s).Error)
		stores[i] = s.StoreID
	}

	svc, err := NewService(NewRepository(conn), memberships.NewRepository(conn), client)
	require.NoError(t, err)
	ctx := context.Background()

	const adds = 20
	var wg sync.WaitGroup
	errs := make(chan error, adds+len(stores)-1)
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Add(ctx, stores[0], AddItemInput{Name: fmt.Sprintf("Item %02d", i), UserID: ana.UserID})
			errs <- err
		}(i)
	}
	for _, storeID := range stores[1:] {
		wg.Add(1)
		go func(storeID int64) {
			defer wg.Done()
			_, err := svc.Add(ctx, storeID, AddItemInput{Name: "Bread", UserID: ana.UserID})
			errs <- err
		}(storeID)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	listed, err := svc.List(ctx, stores[0])
	require.NoError(t, err)
	assert.Len(t, listed, adds)

	var bread int64
	require.NoError(t, conn.Model(&models.Item{}).Where("LOWER(name) = ?", "bread").Count(&bread).Error)
	assert.EqualValues(t, 1, bread, "concurrent adds of one name share a catalog row")

	var rows int64
	require.NoError(t, conn.Model(&models.StoreItem{}).Where("item_id IN (?)", conn.Model(&models.Item{}).Select("item_id").Where("LOWER(name) = ?", "bread")).Count(&rows).Error)
	assert.EqualValues(t, len(stores)-1, rows)
}
