package grocerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultSessionTTL     = 30 * 24 * time.Hour
	defaultTimeout        = 10 * time.Second
	errorBodyReadLimit    = 4096
	msgItemAdded          = "Item added successfully"
	msgItemDeleted        = "Item deleted successfully"
	fallbackCreateSession = "Failed to create session"
	fallbackGetSession    = "Failed to load session"
	fallbackJoinSession   = "Failed to join session"
	fallbackListStores    = "Failed to load stores"
	fallbackCreateStore   = "Failed to create store"
	fallbackUpdateStore   = "Failed to update store"
	fallbackDeleteStore   = "Failed to delete store"
	fallbackLoadItems     = "Failed to load items"
	fallbackAddItem       = "Failed to add item"
	fallbackUpdateItem    = "Failed to update item"
	fallbackDeleteItem    = "Failed to delete item"
	headerContentType     = "Content-Type"
	contentTypeJSON       = "application/json"
)

var errBaseURLRequired = errors.New("grocer base url is required")

// Notifier presents user-visible notices. Implementations must be safe for
// concurrent use when the client is shared.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// APIError is returned by every failed call. Status is zero when the request
// never produced a response.
type APIError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

// Client is the grocer HTTP facade. Construct one at startup and pass it to
// whatever needs it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	notifier   Notifier
	sessionTTL time.Duration
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithNotifier routes success and failure notices to n.
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithSessionTTL changes the expiry applied by CreateSession when the caller
// gives none.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.sessionTTL = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid grocer base url %q", baseURL)
	}

	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    trimmed,
		notifier:   nopNotifier{},
		sessionTTL: defaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// CreateSession registers a session. An empty id is replaced by a random
// UUID and a zero expiry by now plus the session TTL.
func (c *Client) CreateSession(ctx context.Context, sessionID string, expiresAt time.Time) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}
	if expiresAt.IsZero() {
		expiresAt = c.now().Add(c.sessionTTL)
	}
	body := map[string]any{"sessionId": sessionID, "expiresAt": expiresAt.UTC()}

	var out Session
	if err := c.call(ctx, http.MethodPost, "/api/sessions", body, &out, fallbackCreateSession); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession fetches a session by id.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var out Session
	if err := c.call(ctx, http.MethodGet, sessionPath(sessionID), nil, &out, fallbackGetSession); err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinSession adds a participant to a session. Pass a nil userID to create a
// new user called name.
func (c *Client) JoinSession(ctx context.Context, sessionID, name string, userID *int64) (*JoinResult, error) {
	body := map[string]any{"name": name}
	if userID != nil {
		body["userId"] = *userID
	}
	var out JoinResult
	if err := c.call(ctx, http.MethodPost, sessionPath(sessionID)+"/users", body, &out, fallbackJoinSession); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListStores returns the stores of a session, newest first.
func (c *Client) ListStores(ctx context.Context, sessionID string) ([]Store, error) {
	path := "/api/stores?" + url.Values{"sessionId": []string{sessionID}}.Encode()
	out := []Store{}
	if err := c.call(ctx, http.MethodGet, path, nil, &out, fallbackListStores); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateStore adds a store to a session on behalf of userID.
func (c *Client) CreateStore(ctx context.Context, in CreateStoreInput) (*Store, error) {
	var out Store
	if err := c.call(ctx, http.MethodPost, "/api/stores", in, &out, fallbackCreateStore); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStore renames a store and optionally sets its total.
func (c *Client) UpdateStore(ctx context.Context, storeID int64, in UpdateStoreInput) (*Store, error) {
	var out Store
	if err := c.call(ctx, http.MethodPatch, storePath(storeID), in, &out, fallbackUpdateStore); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStore removes a store and its list entries.
func (c *Client) DeleteStore(ctx context.Context, storeID, userID int64) error {
	body := map[string]int64{"userId": userID}
	return c.call(ctx, http.MethodDelete, storePath(storeID), body, nil, fallbackDeleteStore)
}

// GetStoreItems lists the items of a store, newest first.
func (c *Client) GetStoreItems(ctx context.Context, storeID int64) ([]Item, error) {
	out := []Item{}
	if err := c.call(ctx, http.MethodGet, storePath(storeID)+"/items", nil, &out, fallbackLoadItems); err != nil {
		return nil, err
	}
	return out, nil
}

// AddItem puts an item on a store's list.
func (c *Client) AddItem(ctx context.Context, storeID int64, in AddItemInput) (*Item, error) {
	var out Item
	if err := c.call(ctx, http.MethodPost, storePath(storeID)+"/items", in, &out, fallbackAddItem); err != nil {
		return nil, err
	}
	c.notifier.Success(msgItemAdded)
	return &out, nil
}

// UpdateItem applies the supplied fields of in to a list entry.
func (c *Client) UpdateItem(ctx context.Context, storeID, itemID int64, in UpdateItemInput) (*Item, error) {
	var out Item
	if err := c.call(ctx, http.MethodPatch, itemPath(storeID, itemID), in, &out, fallbackUpdateItem); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem removes a list entry. The catalog item survives.
func (c *Client) DeleteItem(ctx context.Context, storeID, itemID, userID int64) error {
	body := map[string]int64{"userId": userID}
	if err := c.call(ctx, http.MethodDelete, itemPath(storeID, itemID), body, nil, fallbackDeleteItem); err != nil {
		return err
	}
	c.notifier.Success(msgItemDeleted)
	return nil
}

// call performs the request and reports any failure to the notifier before
// returning it.
func (c *Client) call(ctx context.Context, method, path string, body, out any, fallback string) error {
	err := c.do(ctx, method, path, body, out, fallback)
	if err != nil {
		c.notifier.Error(err.Message)
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, fallback string) *APIError {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &APIError{Message: fallback, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Message: fallback, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: fallback, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp, fallback)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeError(resp *http.Response, fallback string) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: fallback}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	if err != nil {
		apiErr.Err = err
		return apiErr
	}
	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Code = payload.Code
		if strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}

func sessionPath(sessionID string) string {
	return "/api/sessions/" + url.PathEscape(sessionID)
}

func storePath(storeID int64) string {
	return "/api/stores/" + strconv.FormatInt(storeID, 10)
}

func itemPath(storeID, itemID int64) string {
	return storePath(storeID) + "/items/" + strconv.FormatInt(itemID, 10)
}
