package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/grocer-backend/internal/items"
	"github.com/angelmondragon/grocer-backend/internal/memberships"
	"github.com/angelmondragon/grocer-backend/internal/sessions"
	"github.com/angelmondragon/grocer-backend/internal/stores"
	"github.com/angelmondragon/grocer-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/grocer-backend/pkg/errors"
	"github.com/angelmondragon/grocer-backend/pkg/types"
)

func withParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

type stubSessionService struct {
	sessions.Service
	joinResult  *sessions.JoinResult
	lastUpdate  sessions.UpdateSessionInput
	lastCreate  sessions.CreateSessionInput
	updateValue *sessions.SessionDTO
	err         error
}

func (s *stubSessionService) Create(_ context.Context, in sessions.CreateSessionInput) (*sessions.SessionDTO, error) {
	s.lastCreate = in
	if s.err != nil {
		return nil, s.err
	}
	return &sessions.SessionDTO{SessionID: in.SessionID, ExpiresAt: in.ExpiresAt, IsActive: true}, nil
}

func (s *stubSessionService) Update(_ context.Context, _ string, in sessions.UpdateSessionInput) (*sessions.SessionDTO, error) {
	s.lastUpdate = in
	return s.updateValue, s.err
}

func (s *stubSessionService) Join(context.Context, string, sessions.JoinSessionInput) (*sessions.JoinResult, error) {
	return s.joinResult, s.err
}

func (s *stubSessionService) ListMembers(context.Context, string) ([]memberships.SessionUserDTO, error) {
	return nil, s.err
}

type stubStoreService struct {
	stores.Service
	lastUpdate stores.UpdateStoreInput
	lastDelete int64
	err        error
}

func (s *stubStoreService) Update(_ context.Context, id int64, in stores.UpdateStoreInput) (*stores.StoreDTO, error) {
	s.lastUpdate = in
	if s.err != nil {
		return nil, s.err
	}
	return &stores.StoreDTO{StoreID: id, Name: in.Name}, nil
}

func (s *stubStoreService) Delete(_ context.Context, _ int64, userID int64) error {
	s.lastDelete = userID
	return s.err
}

type stubItemService struct {
	items.Service
	lastUpdate items.UpdateItemInput
	lastAdd    items.AddItemInput
}

func (s *stubItemService) Add(_ context.Context, _ int64, in items.AddItemInput) (*items.ItemDTO, error) {
	s.lastAdd = in
	return &items.ItemDTO{ItemID: 1, Name: in.Name}, nil
}

func (s *stubItemService) Update(_ context.Context, _, itemID int64, in items.UpdateItemInput) (*items.ItemDTO, error) {
	s.lastUpdate = in
	return &items.ItemDTO{ItemID: itemID}, nil
}

func TestSessionCreateParsesBody(t *testing.T) {
	svc := &stubSessionService{}
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"sessionId":"abc-123","expiresAt":"2030-01-02T03:04:05Z"}`))
	rec := httptest.NewRecorder()
	SessionCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	want := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	if svc.lastCreate.SessionID != "abc-123" || !svc.lastCreate.ExpiresAt.Equal(want) {
		t.Fatalf("unexpected input %+v", svc.lastCreate)
	}
}

func TestSessionUpdateWritesNullWhenNothingWritable(t *testing.T) {
	svc := &stubSessionService{}
	req := withParams(httptest.NewRequest(http.MethodPatch, "/api/sessions/abc", strings.NewReader(`{"created_at":"x"}`)), "sessionId", "abc")
	rec := httptest.NewRecorder()
	SessionUpdate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "null" {
		t.Fatalf("expected null body got %s", rec.Body.String())
	}
	if !svc.lastUpdate.Empty() {
		t.Fatalf("expected empty update, got %+v", svc.lastUpdate)
	}
}

func TestSessionUpdateAcceptsNumericFlag(t *testing.T) {
	svc := &stubSessionService{updateValue: &sessions.SessionDTO{SessionID: "abc"}}
	req := withParams(httptest.NewRequest(http.MethodPatch, "/api/sessions/abc", strings.NewReader(`{"is_active":1}`)), "sessionId", "abc")
	SessionUpdate(svc, nil).ServeHTTP(httptest.NewRecorder(), req)

	if svc.lastUpdate.IsActive == nil || !*svc.lastUpdate.IsActive {
		t.Fatalf("expected is_active=true, got %+v", svc.lastUpdate)
	}
}

func TestSessionJoinStatusReflectsCreation(t *testing.T) {
	for _, tc := range []struct {
		created bool
		want    int
	}{{true, http.StatusCreated}, {false, http.StatusOK}} {
		svc := &stubSessionService{joinResult: &sessions.JoinResult{Created: tc.created}}
		req := withParams(httptest.NewRequest(http.MethodPost, "/api/sessions/abc/users", strings.NewReader(`{"name":"Ana"}`)), "sessionId", "abc")
		rec := httptest.NewRecorder()
		SessionJoin(svc, nil).ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("created=%v: expected %d got %d", tc.created, tc.want, rec.Code)
		}
	}
}

func TestSessionMembersPropagatesNotFound(t *testing.T) {
	svc := &stubSessionService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Session not found")}
	req := withParams(httptest.NewRequest(http.MethodGet, "/api/sessions/x/users", nil), "sessionId", "x")
	rec := httptest.NewRecorder()
	SessionMembers(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestStoreUpdateDistinguishesAbsentAndNullPrice(t *testing.T) {
	svc := &stubStoreService{}
	req := withParams(httptest.NewRequest(http.MethodPatch, "/api/stores/3", strings.NewReader(`{"name":"Aldi","userId":1}`)), "storeId", "3")
	StoreUpdate(svc, nil).ServeHTTP(httptest.NewRecorder(), req)
	if svc.lastUpdate.TotalPrice.Valid {
		t.Fatal("expected absent total price to stay unset")
	}

	req = withParams(httptest.NewRequest(http.MethodPatch, "/api/stores/3", strings.NewReader(`{"name":"Aldi","userId":1,"totalPrice":null}`)), "storeId", "3")
	StoreUpdate(svc, nil).ServeHTTP(httptest.NewRecorder(), req)
	if !svc.lastUpdate.TotalPrice.Valid || !svc.lastUpdate.TotalPrice.Value.IsNull() {
		t.Fatalf("expected explicit null, got %+v", svc.lastUpdate.TotalPrice)
	}

	req = withParams(httptest.NewRequest(http.MethodPatch, "/api/stores/3", strings.NewReader(`{"name":"Aldi","userId":1,"totalPrice":42.5}`)), "storeId", "3")
	StoreUpdate(svc, nil).ServeHTTP(httptest.NewRecorder(), req)
	if got := svc.lastUpdate.TotalPrice.Value.String(); got != "42.50" {
		t.Fatalf("expected 42.50, got %s", got)
	}
}

func TestStoreUpdateRequiresNameAndUser(t *testing.T) {
	req := withParams(httptest.NewRequest(http.MethodPatch, "/api/stores/3", strings.NewReader(`{"userId":1}`)), "storeId", "3")
	rec := httptest.NewRecorder()
	StoreUpdate(&stubStoreService{}, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Store name and user ID are required" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}

func TestStoreDeleteRejectsBadPathID(t *testing.T) {
	req := withParams(httptest.NewRequest(http.MethodDelete, "/api/stores/abc", strings.NewReader(`{"userId":1}`)), "storeId", "abc")
	rec := httptest.NewRecorder()
	svc := &stubStoreService{}
	StoreDelete(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.lastDelete != 0 {
		t.Fatal("service should not be called")
	}
}

func TestItemCreatePassesOptionalFields(t *testing.T) {
	svc := &stubItemService{}
	req := withParams(httptest.NewRequest(http.MethodPost, "/api/stores/3/items", strings.NewReader(`{"name":"Milk","description":"2%","price":"3.49","userId":1}`)), "storeId", "3")
	rec := httptest.NewRecorder()
	ItemCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if svc.lastAdd.Quantity != nil {
		t.Fatalf("expected quantity unset, got %v", *svc.lastAdd.Quantity)
	}
	if svc.lastAdd.Description == nil || *svc.lastAdd.Description != "2%" {
		t.Fatalf("unexpected description %v", svc.lastAdd.Description)
	}
	if svc.lastAdd.Price.String() != "3.49" {
		t.Fatalf("unexpected price %s", svc.lastAdd.Price.String())
	}
}

func TestItemUpdateCarriesOnlySuppliedFields(t *testing.T) {
	svc := &stubItemService{}
	req := withParams(httptest.NewRequest(http.MethodPatch, "/api/stores/3/items/9", strings.NewReader(`{"is_checked":true,"userId":1}`)), "storeId", "3", "itemId", "9")
	rec := httptest.NewRecorder()
	ItemUpdate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	in := svc.lastUpdate
	if in.IsChecked == nil || !*in.IsChecked {
		t.Fatalf("expected is_checked=true, got %+v", in)
	}
	if in.Quantity != nil || in.Name != nil || in.Price.Valid {
		t.Fatalf("expected untouched fields to stay unset, got %+v", in)
	}
}

func TestHealthReadyReportsDependencyFailure(t *testing.T) {
	cfg := &config.Config{}
	rec := httptest.NewRecorder()
	HealthReady(cfg, nil, failingPinger{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return context.DeadlineExceeded }
