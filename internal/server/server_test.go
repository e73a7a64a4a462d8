package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/expediterhq/expediter/internal/authorization"
	"github.com/expediterhq/expediter/internal/metrics"
	orderdomain "github.com/expediterhq/expediter/internal/order/domain"
	"github.com/expediterhq/expediter/internal/realtime"
	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
)

type fakeStaffService struct {
	identity staffdomain.Identity
}

func (f *fakeStaffService) Create(ctx context.Context, req staffdomain.CreateStaffRequest) (staffdomain.Staff, error) {
	_ = ctx
	_ = req
	return staffdomain.Staff{}, nil
}

func (f *fakeStaffService) Resolve(ctx context.Context, id string) (staffdomain.Identity, error) {
	_ = ctx
	if id != f.identity.ID.String() {
		return staffdomain.Identity{}, staffdomain.ErrNotFound
	}
	return f.identity, nil
}

func (f *fakeStaffService) List(ctx context.Context) ([]staffdomain.Staff, error) {
	_ = ctx
	return nil, nil
}

type fakeAuthzService struct {
	denied bool
}

func (f *fakeAuthzService) Authorize(ctx context.Context, actor staffdomain.Identity, object, action string) error {
	_ = ctx
	_ = actor
	_ = object
	_ = action
	if f.denied {
		return authorization.ErrForbidden
	}
	return nil
}

type fakeOrderService struct {
	created    *orderdomain.CreateOrderRequest
	createErr  error
	updateErr  error
	lastStatus string
	view       orderdomain.OrderView
}

func (f *fakeOrderService) Create(ctx context.Context, req orderdomain.CreateOrderRequest) (orderdomain.OrderView, error) {
	_ = ctx
	if f.createErr != nil {
		return orderdomain.OrderView{}, f.createErr
	}
	f.created = &req
	return f.view, nil
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, req orderdomain.UpdateStatusRequest) (orderdomain.OrderView, error) {
	_ = ctx
	if f.updateErr != nil {
		return orderdomain.OrderView{}, f.updateErr
	}
	f.lastStatus = req.Status
	view := f.view
	view.Status = orderdomain.Status(req.Status)
	return view, nil
}

func (f *fakeOrderService) List(ctx context.Context, req orderdomain.ListOrdersRequest) ([]orderdomain.OrderView, error) {
	_ = ctx
	_ = req
	return []orderdomain.OrderView{f.view}, nil
}

func (f *fakeOrderService) GetByID(ctx context.Context, id string) (orderdomain.OrderView, error) {
	_ = ctx
	if id != f.view.ID.String() {
		return orderdomain.OrderView{}, orderdomain.ErrNotFound
	}
	return f.view, nil
}

func newTestServer(orders orderdomain.Service, authz *fakeAuthzService) (*Server, *gin.Engine, staffdomain.Identity) {
	gin.SetMode(gin.TestMode)

	identity := staffdomain.Identity{
		ID:   snowflake.ID(42),
		Name: "Maria Lopez",
		Role: staffdomain.RoleWaiter,
	}

	srv := &Server{
		staffSvc: &fakeStaffService{identity: identity},
		orderSvc: orders,
		authzSvc: authz,
		metrics:  metrics.New(realtime.NewHub()),
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	srv.engine = router
	srv.registerOrderRoutes()

	return srv, router, identity
}

func performJSON(router *gin.Engine, method, target, staffID, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if staffID != "" {
		req.Header.Set(HeaderStaff, staffID)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateOrderReturnsCreated(t *testing.T) {
	orders := &fakeOrderService{
		view: orderdomain.OrderView{
			Order: orderdomain.Order{
				ID:          snowflake.ID(900),
				OrderNumber: "ORD01HZXA",
				Type:        orderdomain.TypeDineIn,
				Status:      orderdomain.StatusPending,
			},
			ServerName: "Maria Lopez",
		},
	}
	_, router, identity := newTestServer(orders, &fakeAuthzService{})

	body := `{"type":"dine-in","table_number":4,"items":[{"menu_item_id":"12","quantity":2}]}`
	resp := performJSON(router, http.MethodPost, "/api/orders", identity.ID.String(), body)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if orders.created == nil {
		t.Fatal("expected order service to be called")
	}
	if orders.created.Server.ID != identity.ID {
		t.Fatalf("expected server identity %s, got %s", identity.ID, orders.created.Server.ID)
	}
	if len(orders.created.Items) != 1 || orders.created.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items payload: %+v", orders.created.Items)
	}
}

func TestCreateOrderWithoutStaffHeaderReturns401(t *testing.T) {
	_, router, _ := newTestServer(&fakeOrderService{}, &fakeAuthzService{})

	resp := performJSON(router, http.MethodPost, "/api/orders", "", `{"type":"dine-in"}`)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestCreateOrderDeniedReturns403(t *testing.T) {
	_, router, identity := newTestServer(&fakeOrderService{}, &fakeAuthzService{denied: true})

	resp := performJSON(router, http.MethodPost, "/api/orders", identity.ID.String(), `{"type":"dine-in"}`)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestCreateOrderValidationFailureReturns400(t *testing.T) {
	orders := &fakeOrderService{createErr: orderdomain.ErrEmptyOrder}
	_, router, identity := newTestServer(orders, &fakeAuthzService{})

	resp := performJSON(router, http.MethodPost, "/api/orders", identity.ID.String(), `{"type":"dine-in","table_number":4,"items":[]}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %q", payload.Error.Type)
	}
}

func TestUpdateStatusIllegalTransitionReturns409(t *testing.T) {
	orders := &fakeOrderService{updateErr: orderdomain.ErrIllegalTransition}
	_, router, identity := newTestServer(orders, &fakeAuthzService{})

	resp := performJSON(router, http.MethodPut, "/api/orders/900/status", identity.ID.String(), `{"status":"completed"}`)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGetOrderMissingReturns404(t *testing.T) {
	orders := &fakeOrderService{
		view: orderdomain.OrderView{Order: orderdomain.Order{ID: snowflake.ID(900)}},
	}
	_, router, identity := newTestServer(orders, &fakeAuthzService{})

	resp := performJSON(router, http.MethodGet, "/api/orders/901", identity.ID.String(), "")

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
