package stores

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/grocer-backend/internal/memberships"
	"github.com/angelmondragon/grocer-backend/internal/repo"
	"github.com/angelmondragon/grocer-backend/internal/sessions"
	"github.com/angelmondragon/grocer-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/grocer-backend/pkg/errors"
	"github.com/angelmondragon/grocer-backend/pkg/migrate/migratetest"
	"github.com/angelmondragon/grocer-backend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	conn   *gorm.DB
	svc    Service
	now    time.Time
	member int64
	other  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := migratetest.OpenSQLite(t, "stores")
	f := &fixture{conn: client.DB(), now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	clock := repo.WithClock(func() time.Time { return f.now })

	svc, err := NewService(
		NewRepository(client.DB(), clock),
		sessions.NewRepository(client.DB(), clock),
		memberships.NewRepository(client.DB(), clock),
		client,
	)
	require.NoError(t, err)
	f.svc = svc

	require.NoError(t, f.conn.Create(&models.Session{SessionID: "abc-123", CreatedAt: f.now, ExpiresAt: f.now.Add(30 * 24 * time.Hour), IsActive: true}).Error)
	require.NoError(t, f.conn.Create(&models.Session{SessionID: "expired", CreatedAt: f.now, ExpiresAt: f.now.Add(-time.Hour), IsActive: true}).Error)

	ana := &models.User{Name: "Ana", CreatedAt: f.now}
	ben := &models.User{Name: "Ben", CreatedAt: f.now}
	require.NoError(t, f.conn.Create(ana).Error)
	require.NoError(t, f.conn.Create(ben).Error)
	f.member, f.other = ana.UserID, ben.UserID

	require.NoError(t, f.conn.Create(&models.SessionUser{SessionID: "abc-123", UserID: ana.UserID, JoinedAt: f.now}).Error)
	require.NoError(t, f.conn.Create(&models.SessionUser{SessionID: "expired", UserID: ana.UserID, JoinedAt: f.now}).Error)
	return f
}

func requireCode(t *testing.T, err error, code pkgerrors.Code, msg string) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
	if msg != "" {
		assert.Equal(t, msg, typed.Message())
	}
}

func (f *fixture) countRows(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(model).Where(where, args...).Count(&n).Error)
	return n
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, &sessions.Repository{}, &memberships.Repository{}, nil)
	assert.Error(t, err)
	_, err = newService(&Repository{}, nil, &memberships.Repository{}, nil, nil)
	assert.Error(t, err)
	_, err = newService(&Repository{}, &sessions.Repository{}, nil, nil, nil)
	assert.Error(t, err)
	_, err = newService(&Repository{}, &sessions.Repository{}, &memberships.Repository{}, nil, nil)
	assert.Error(t, err)
}

func TestCreateStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	store, err := f.svc.Create(ctx, CreateStoreInput{Name: "Costco", SessionID: "abc-123", UserID: f.member, TotalPrice: types.PriceFromFloat(120)})
	require.NoError(t, err)
	assert.NotZero(t, store.StoreID)
	assert.Equal(t, "Costco", store.Name)
	require.NotNil(t, store.CreatedByName)
	assert.Equal(t, "Ana", *store.CreatedByName)
	assert.Equal(t, "120.00", store.TotalPrice.String())
}

func TestCreateStoreValidationAndAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateStoreInput{Name: "  ", SessionID: "abc-123", UserID: f.member})
	requireCode(t, err, pkgerrors.CodeValidation, msgCreateRequired)

	_, err = f.svc.Create(ctx, CreateStoreInput{Name: "Costco", SessionID: "expired", UserID: f.member})
	requireCode(t, err, pkgerrors.CodeValidation, msgInvalidSession)

	_, err = f.svc.Create(ctx, CreateStoreInput{Name: "Costco", SessionID: "missing", UserID: f.member})
	requireCode(t, err, pkgerrors.CodeValidation, msgInvalidSession)

	_, err = f.svc.Create(ctx, CreateStoreInput{Name: "Costco", SessionID: "abc-123", UserID: f.other})
	requireCode(t, err, pkgerrors.CodeForbidden, msgNotMember)

	assert.Zero(t, f.countRows(t, &models.Store{}, "1 = 1"))
}

func TestListAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, CreateStoreInput{Name: "Costco", SessionID: "abc-123", UserID: f.member})
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	second, err := f.svc.Create(ctx, CreateStoreInput{Name: "Aldi", SessionID: "abc-123", UserID: f.member})
	require.NoError(t, err)

	list, err := f.svc.ListBySession(ctx, "abc-123")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.StoreID, list[0].StoreID, "newest first")
	assert.Equal(t, first.StoreID, list[1].StoreID)

	empty, err := f.svc.ListBySession(ctx, "expired")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = f.svc.ListBySession(ctx, "")
	requireCode(t, err, pkgerrors.CodeValidation, msgSessionRequired)

	got, err := f.svc.GetByID(ctx, first.StoreID)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", got.SessionID)

	_, err = f.svc.GetByID(ctx, 999)
	requireCode(t, err, pkgerrors.CodeNotFound, msgStoreNotFound)
}

func TestUpdateStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store, err := f.svc.Create(ctx, CreateStoreInput{Name: "Costco", SessionID: "abc-123", UserID: f.member, TotalPrice: types.PriceFromFloat(40)})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, store.StoreID, UpdateStoreInput{Name: "Costco Wholesale", UserID: f.member})
	require.NoError(t, err)
	assert.Equal(t, "Costco Wholesale", updated.Name)
	assert.Equal(t, "40.00", updated.TotalPrice.String(), "absent total price is kept")

	updated, err = f.svc.Update(ctx, store.StoreID, UpdateStoreInput{Name: "Costco", UserID: f.member, TotalPrice: types.SetPrice(types.Price{})})
	require.NoError(t, err)
	assert.True(t, updated.TotalPrice.IsNull(), "explicit null clears total price")

	_, err = f.svc.Update(ctx, store.StoreID, UpdateStoreInput{Name: "", UserID: f.member})
	requireCode(t, err, pkgerrors.CodeValidation, msgUpdateRequired)

	_, err = f.svc.Update(ctx, store.StoreID, UpdateStoreInput{Name: "Hijack", UserID: f.other})
	requireCode(t, err, pkgerrors.CodeForbidden, msgUpdateForbidden)

	got, err := f.svc.GetByID(ctx, store.StoreID)
	require.NoError(t, err)
	assert.Equal(t, "Costco", got.Name, "forbidden update must not mutate")
}

func TestUpdateMissingStoreIsForbiddenBeforeNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Update(context.Background(), 4242, UpdateStoreInput{Name: "Ghost", UserID: f.other})
	requireCode(t, err, pkgerrors.CodeForbidden, msgUpdateForbidden)

	_, err = f.svc.Update(context.Background(), 4242, UpdateStoreInput{Name: "Ghost", UserID: f.member})
	requireCode(t, err, pkgerrors.CodeForbidden, msgUpdateForbidden)
}

func TestTotalPriceIsNotDerivedFromItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store, err := f.svc.Create(ctx, CreateStoreInput{Name: "Costco", SessionID: "abc-123", UserID: f.member, TotalPrice: types.PriceFromFloat(10)})
	require.NoError(t, err)

	item := &models.Item{Name: "Milk", CreatedAt: f.now}
	require.NoError(t, f.conn.Create(item).Error)
	require.NoError(t, f.conn.Create(&models.StoreItem{
		StoreID: store.StoreID, ItemID: item.ItemID, Quantity: 3, Price: types.PriceFromFloat(99),
		AddedBy: f.member, AddedAt: f.now, LastUpdatedAt: f.now,
	}).Error)

	got, err := f.svc.GetByID(ctx, store.StoreID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.TotalPrice.String())
}

func TestDeleteStoreCascadesStoreItemsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store, err := f.svc.Create(ctx, CreateStoreInput{Name: "Costco", SessionID: "abc-123", UserID: f.member})
	require.NoError(t, err)

	for _, name := range []string{"Apples", "Bread"} {
		item := &models.Item{Name: name, CreatedAt: f.now}
		require.NoError(t, f.conn.Create(item).Error)
		require.NoError(t, f.conn.Create(&models.StoreItem{
			StoreID: store.StoreID, ItemID: item.ItemID, Quantity: 1,
			AddedBy: f.member, AddedAt: f.now, LastUpdatedAt: f.now,
		}).Error)
	}

	requireCode(t, f.svc.Delete(ctx, store.StoreID, 0), pkgerrors.CodeValidation, msgUserRequired)
	requireCode(t, f.svc.Delete(ctx, store.StoreID, f.other), pkgerrors.CodeForbidden, msgDeleteForbidden)
	assert.Equal(t, int64(2), f.countRows(t, &models.StoreItem{}, "store_id = ?", store.StoreID), "forbidden delete must not mutate")

	require.NoError(t, f.svc.Delete(ctx, store.StoreID, f.member))

	assert.Zero(t, f.countRows(t, &models.StoreItem{}, "store_id = ?", store.StoreID))
	assert.Zero(t, f.countRows(t, &models.Store{}, "store_id = ?", store.StoreID))
	assert.Equal(t, int64(2), f.countRows(t, &models.Item{}, "1 = 1"), "catalog items survive")

	// access is derived through the store row, so a second delete is forbidden
	requireCode(t, f.svc.Delete(ctx, store.StoreID, f.member), pkgerrors.CodeForbidden, msgDeleteForbidden)
}

type stubDeleter struct{ affected int64 }

func (s stubDeleter) Delete(context.Context, int64) (int64, error) { return s.affected, nil }

type allowAll struct{}

func (allowAll) IsMember(context.Context, string, int64) (bool, error)     { return true, nil }
func (allowAll) CanAccessStore(context.Context, int64, int64) (bool, error) { return true, nil }

func TestDeleteZeroRowsRollsBackAsNotFound(t *testing.T) {
	client := migratetest.OpenSQLite(t, "stores_rollback")
	svc, err := newService(NewRepository(client.DB()), sessions.NewRepository(client.DB()), allowAll{}, client,
		func(*gorm.DB) storeDeleter { return stubDeleter{affected: 0} })
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 7, 1)
	requireCode(t, err, pkgerrors.CodeNotFound, msgStoreNotFound)
}
