package grocerclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/grocer-backend/api/routes"
	"github.com/angelmondragon/grocer-backend/internal/app"
	"github.com/angelmondragon/grocer-backend/pkg/config"
	"github.com/angelmondragon/grocer-backend/pkg/logger"
	"github.com/angelmondragon/grocer-backend/pkg/migrate/migratetest"
	"github.com/angelmondragon/grocer-backend/pkg/types"
)

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, msg)
}

func newTestAPI(t *testing.T, name string) *httptest.Server {
	t.Helper()
	dbClient := migratetest.OpenSQLite(t, name)
	svcs, err := app.NewServices(dbClient)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Env = config.AppEnvDev
	handler := routes.NewRouter(routes.Params{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "grocerclient-test", Output: io.Discard}),
		DB:       dbClient,
		Sessions: svcs.Sessions,
		Stores:   svcs.Stores,
		Items:    svcs.Items,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("  ")
	require.ErrorIs(t, err, errBaseURLRequired)

	_, err = New("not a url")
	require.Error(t, err)

	c, err := New("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
	assert.Equal(t, defaultSessionTTL, c.sessionTTL)
}

func TestClientShoppingFlow(t *testing.T) {
	srv := newTestAPI(t, "client_flow")
	notes := &recordingNotifier{}
	now := time.Now().UTC().Truncate(time.Second)
	c, err := New(srv.URL, WithNotifier(notes), WithHTTPClient(srv.Client()), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	ctx := context.Background()

	session, err := c.CreateSession(ctx, "", time.Time{})
	require.NoError(t, err)
	assert.Len(t, session.SessionID, 36)
	assert.True(t, session.ExpiresAt.Equal(now.Add(30*24*time.Hour)), "expires_at=%s", session.ExpiresAt)

	fetched, err := c.GetSession(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, fetched.SessionID)

	joined, err := c.JoinSession(ctx, session.SessionID, "Ana", nil)
	require.NoError(t, err)
	assert.True(t, joined.Created)
	assert.Equal(t, "Ana", joined.User.Name)
	userID := joined.User.UserID

	again, err := c.JoinSession(ctx, session.SessionID, "", &userID)
	require.NoError(t, err)
	assert.False(t, again.Created)

	store, err := c.CreateStore(ctx, CreateStoreInput{Name: "Costco", SessionID: session.SessionID, UserID: userID})
	require.NoError(t, err)
	assert.True(t, store.TotalPrice.IsNull())

	total := types.PriceFromFloat(42.5)
	store, err = c.UpdateStore(ctx, store.StoreID, UpdateStoreInput{Name: "Costco Wholesale", TotalPrice: &total, UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, "42.50", store.TotalPrice.String())

	listed, err := c.ListStores(ctx, session.SessionID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Costco Wholesale", listed[0].Name)

	qty := 2
	item, err := c.AddItem(ctx, store.StoreID, AddItemInput{Name: "Milk", Quantity: &qty, Price: types.PriceFromFloat(3.99), UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.False(t, item.IsChecked)
	assert.Equal(t, "Ana", item.AddedByName)

	checked := true
	item, err = c.UpdateItem(ctx, store.StoreID, item.ItemID, UpdateItemInput{IsChecked: &checked, UserID: userID})
	require.NoError(t, err)
	assert.True(t, item.IsChecked)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "3.99", item.Price.String())

	items, err := c.GetStoreItems(ctx, store.StoreID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, c.DeleteItem(ctx, store.StoreID, item.ItemID, userID))
	items, err = c.GetStoreItems(ctx, store.StoreID)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, c.DeleteStore(ctx, store.StoreID, userID))

	assert.Equal(t, []string{msgItemAdded, msgItemDeleted}, notes.successes)
	assert.Empty(t, notes.failures)
}

func TestClientSurfacesServerErrors(t *testing.T) {
	srv := newTestAPI(t, "client_errors")
	notes := &recordingNotifier{}
	c, err := New(srv.URL, WithNotifier(notes))
	require.NoError(t, err)
	ctx := context.Background()

	session, err := c.CreateSession(ctx, "errors-session", time.Time{})
	require.NoError(t, err)
	owner, err := c.JoinSession(ctx, session.SessionID, "Owner", nil)
	require.NoError(t, err)
	store, err := c.CreateStore(ctx, CreateStoreInput{Name: "Aldi", SessionID: session.SessionID, UserID: owner.User.UserID})
	require.NoError(t, err)

	_, err = c.GetStoreItems(ctx, 999999)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Store not found", apiErr.Message)

	_, err = c.AddItem(ctx, store.StoreID, AddItemInput{Name: "Bread", UserID: owner.User.UserID + 100})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Unauthorized to add items to this store", apiErr.Message)

	err = c.DeleteItem(ctx, store.StoreID, 12345, owner.User.UserID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	assert.Equal(t, []string{"Store not found", "Unauthorized to add items to this store", "Item not found"}, notes.failures)
	assert.Empty(t, notes.successes)
}

func TestClientFallsBackOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	notes := &recordingNotifier{}
	c, err := New(baseURL, WithNotifier(notes))
	require.NoError(t, err)

	_, err = c.GetStoreItems(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.Equal(t, fallbackLoadItems, apiErr.Message)
	assert.NotNil(t, errors.Unwrap(err))
	assert.Equal(t, []string{fallbackLoadItems}, notes.failures)
}

func TestClientFallsBackOnUnstructuredError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	notes := &recordingNotifier{}
	c, err := New(srv.URL, WithNotifier(notes))
	require.NoError(t, err)

	_, err = c.UpdateItem(context.Background(), 1, 2, UpdateItemInput{UserID: 1})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, fallbackUpdateItem, apiErr.Message)
	assert.Equal(t, []string{fallbackUpdateItem}, notes.failures)
}

func TestUpdateItemSendsOnlySuppliedFields(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got = string(raw)
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/stores/4/items/9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"item_id":9,"quantity":1,"price":null,"is_checked":false}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)

	cleared := types.Price{}
	item, err := c.UpdateItem(context.Background(), 4, 9, UpdateItemInput{Price: &cleared, UserID: 3})
	require.NoError(t, err)
	assert.True(t, item.Price.IsNull())
	assert.JSONEq(t, `{"price":null,"userId":3}`, got)
}
