package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditrepo "github.com/expediterhq/expediter/internal/audit/repository"
	auditservice "github.com/expediterhq/expediter/internal/audit/service"
	"github.com/expediterhq/expediter/internal/clock"
	"github.com/expediterhq/expediter/internal/config"
	menudomain "github.com/expediterhq/expediter/internal/menu/domain"
	menurepo "github.com/expediterhq/expediter/internal/menu/repository"
	menuservice "github.com/expediterhq/expediter/internal/menu/service"
	orderdomain "github.com/expediterhq/expediter/internal/order/domain"
	orderrepo "github.com/expediterhq/expediter/internal/order/repository"
	orderservice "github.com/expediterhq/expediter/internal/order/service"
	"github.com/expediterhq/expediter/internal/realtime"
	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
	staffrepo "github.com/expediterhq/expediter/internal/staff/repository"
	staffservice "github.com/expediterhq/expediter/internal/staff/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	hub    *realtime.Hub
	clock  *clock.FakeClock
	orders orderdomain.Service
	menu   menudomain.Service
	server staffdomain.Identity
	burger menudomain.MenuItem
	fries  menudomain.MenuItem
}

func setupFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	ctx := context.Background()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(20)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepo.Provide(),
	})
	staffSvc := staffservice.New(staffservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  staffrepo.Provide(),
	})
	menuSvc := menuservice.New(menuservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  menurepo.Provide(),
	})

	waiter, err := staffSvc.Create(ctx, staffdomain.CreateStaffRequest{
		Username: "maria",
		Name:     "Maria Lopez",
		Role:     "waiter",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}

	burger, err := menuSvc.Create(ctx, menudomain.CreateMenuItemRequest{Name: "Burger", Price: 1000})
	if err != nil {
		t.Fatalf("create burger: %v", err)
	}
	fries, err := menuSvc.Create(ctx, menudomain.CreateMenuItemRequest{Name: "Fries", Price: 500})
	if err != nil {
		t.Fatalf("create fries: %v", err)
	}

	hub := realtime.NewHub()
	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	settings := config.DefaultSettings()
	settings.StrictTransitions = strict

	orderSvc := orderservice.New(orderservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Cfg:       config.Config{PersistTimeoutMS: 2000},
		Settings:  config.NewStaticSettingsHolder(settings),
		Clock:     fakeClock,
		Repo:      orderrepo.Provide(),
		Menu:      menuSvc,
		Staff:     staffSvc,
		Audit:     auditSvc,
		Publisher: hub,
	})

	return &fixture{
		db:     db,
		hub:    hub,
		clock:  fakeClock,
		orders: orderSvc,
		menu:   menuSvc,
		server: staffdomain.Identity{ID: waiter.ID, Name: waiter.Name, Role: waiter.Role},
		burger: burger,
		fries:  fries,
	}
}

func (f *fixture) createOrder(t *testing.T, items []orderdomain.CreateOrderItem) orderdomain.OrderView {
	t.Helper()
	table := int64(4)
	view, err := f.orders.Create(context.Background(), orderdomain.CreateOrderRequest{
		Type:        "dine-in",
		TableNumber: &table,
		Items:       items,
		Server:      f.server,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return view
}

func TestCreateOrderComputesTotals(t *testing.T) {
	f := setupFixture(t, false)

	view := f.createOrder(t, []orderdomain.CreateOrderItem{
		{MenuItemID: f.burger.ID.String(), Quantity: 2},
		{MenuItemID: f.fries.ID.String(), Quantity: 1},
	})

	if view.Subtotal != 2500 || view.Tax != 250 || view.Total != 2750 {
		t.Errorf("totals = %d/%d/%d, want 2500/250/2750", view.Subtotal, view.Tax, view.Total)
	}
	if !strings.HasPrefix(view.OrderNumber, "ORD") {
		t.Errorf("order number %q missing prefix", view.OrderNumber)
	}
	if view.Status != orderdomain.StatusPending {
		t.Errorf("status = %s, want pending", view.Status)
	}
	if view.PaymentStatus != orderdomain.PaymentPending {
		t.Errorf("payment status = %s, want pending", view.PaymentStatus)
	}
	if view.ServerName != "Maria Lopez" {
		t.Errorf("server name = %q", view.ServerName)
	}
	if view.RemainingBalance() != 2750 {
		t.Errorf("remaining = %d, want full total", view.RemainingBalance())
	}

	// Captured line prices survive later menu changes.
	if err := f.menu.SetAvailability(context.Background(), f.burger.ID, false); err != nil {
		t.Fatalf("set availability: %v", err)
	}
	got, err := f.orders.GetByID(context.Background(), view.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Items[0].Price != 1000 {
		t.Errorf("stored line price = %d, want 1000", got.Items[0].Price)
	}
}

func TestCreateOrderPublishesToRooms(t *testing.T) {
	f := setupFixture(t, false)

	chef, _, err := f.hub.Subscribe(realtime.RoomChef)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer chef.Close()

	mine, _, err := f.hub.Subscribe(realtime.UserRoom(f.server.ID))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer mine.Close()

	view := f.createOrder(t, []orderdomain.CreateOrderItem{
		{MenuItemID: f.fries.ID.String(), Quantity: 1},
	})

	for name, sub := range map[string]*realtime.Subscription{"chef": chef, "server": mine} {
		select {
		case event := <-sub.Events():
			if event.Name != realtime.EventOrderCreated || event.OrderNumber != view.OrderNumber {
				t.Errorf("%s received %+v", name, event)
			}
		default:
			t.Errorf("%s room missed the creation event", name)
		}
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()
	items := []orderdomain.CreateOrderItem{{MenuItemID: f.burger.ID.String(), Quantity: 1}}

	cases := []struct {
		name string
		req  orderdomain.CreateOrderRequest
		want error
	}{
		{
			"unknown type",
			orderdomain.CreateOrderRequest{Type: "drive-through", Items: items, Server: f.server},
			orderdomain.ErrInvalidType,
		},
		{
			"dine-in without table",
			orderdomain.CreateOrderRequest{Type: "dine-in", Items: items, Server: f.server},
			orderdomain.ErrMissingTable,
		},
		{
			"delivery without contact",
			orderdomain.CreateOrderRequest{Type: "delivery", Items: items, Server: f.server},
			orderdomain.ErrMissingCustomer,
		},
		{
			"takeaway without contact",
			orderdomain.CreateOrderRequest{Type: "takeaway", Items: items, Server: f.server},
			orderdomain.ErrMissingCustomer,
		},
		{
			"takeaway with nameless contact",
			orderdomain.CreateOrderRequest{
				Type:     "takeaway",
				Customer: &orderdomain.CustomerContact{Phone: "555-0199"},
				Items:    items,
				Server:   f.server,
			},
			orderdomain.ErrMissingCustomer,
		},
		{
			"delivery with phoneless contact",
			orderdomain.CreateOrderRequest{
				Type:     "delivery",
				Customer: &orderdomain.CustomerContact{Name: "Sam"},
				Items:    items,
				Server:   f.server,
			},
			orderdomain.ErrMissingCustomer,
		},
		{
			"no items",
			func() orderdomain.CreateOrderRequest {
				table := int64(1)
				return orderdomain.CreateOrderRequest{Type: "dine-in", TableNumber: &table, Server: f.server}
			}(),
			orderdomain.ErrEmptyOrder,
		},
		{
			"unknown item",
			func() orderdomain.CreateOrderRequest {
				table := int64(1)
				return orderdomain.CreateOrderRequest{
					Type:        "dine-in",
					TableNumber: &table,
					Items:       []orderdomain.CreateOrderItem{{MenuItemID: "999999999", Quantity: 1}},
					Server:      f.server,
				}
			}(),
			orderdomain.ErrUnknownItem,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.Create(ctx, tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreateTakeawayOrderWithContact(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	contact := orderdomain.CustomerContact{Name: "Sam", Phone: "555-0101"}
	view, err := f.orders.Create(ctx, orderdomain.CreateOrderRequest{
		Type:     "takeaway",
		Customer: &contact,
		Items:    []orderdomain.CreateOrderItem{{MenuItemID: f.burger.ID.String(), Quantity: 1}},
		Server:   f.server,
	})
	if err != nil {
		t.Fatalf("create takeaway order: %v", err)
	}
	if got := view.Customer.Data(); got != contact {
		t.Errorf("customer = %+v, want %+v", got, contact)
	}
}

func TestCreateOrderRejectsUnavailableItem(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	if err := f.menu.SetAvailability(ctx, f.fries.ID, false); err != nil {
		t.Fatalf("set availability: %v", err)
	}

	table := int64(2)
	_, err := f.orders.Create(ctx, orderdomain.CreateOrderRequest{
		Type:        "dine-in",
		TableNumber: &table,
		Items:       []orderdomain.CreateOrderItem{{MenuItemID: f.fries.ID.String(), Quantity: 1}},
		Server:      f.server,
	})
	if !errors.Is(err, orderdomain.ErrItemUnavailable) {
		t.Errorf("err = %v, want %v", err, orderdomain.ErrItemUnavailable)
	}
}

func TestUpdateStatusPersistsAndBroadcasts(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	view := f.createOrder(t, []orderdomain.CreateOrderItem{
		{MenuItemID: f.burger.ID.String(), Quantity: 1},
	})

	waiter, _, err := f.hub.Subscribe(realtime.RoomWaiter)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer waiter.Close()

	f.clock.Advance(5 * time.Minute)
	updated, err := f.orders.UpdateStatus(ctx, orderdomain.UpdateStatusRequest{
		OrderID: view.ID.String(),
		Status:  "ready",
		Actor:   f.server,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != orderdomain.StatusReady {
		t.Errorf("status = %s, want ready", updated.Status)
	}
	if !updated.UpdatedAt.After(view.UpdatedAt) {
		t.Error("updatedAt not refreshed")
	}

	select {
	case event := <-waiter.Events():
		wantMsg := fmt.Sprintf("Order %s status changed to ready", view.OrderNumber)
		if event.Message != wantMsg {
			t.Errorf("message = %q, want %q", event.Message, wantMsg)
		}
		if event.Status != "ready" || event.OrderID != view.ID.String() {
			t.Errorf("event = %+v", event)
		}
	default:
		t.Fatal("waiter room missed the status event")
	}

	got, err := f.orders.GetByID(ctx, view.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != orderdomain.StatusReady {
		t.Errorf("persisted status = %s, want ready", got.Status)
	}
}

func TestConcurrentStatusChangesPublishInVersionOrder(t *testing.T) {
	f := setupFixture(t, false)

	view := f.createOrder(t, []orderdomain.CreateOrderItem{
		{MenuItemID: f.burger.ID.String(), Quantity: 1},
	})

	statuses := []string{"preparing", "ready", "completed", "preparing", "ready", "completed", "preparing", "ready"}

	keepalive, _, err := f.hub.Subscribe(realtime.RoomAdmin)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer keepalive.Close()

	type change struct {
		status  string
		version int64
	}
	changes := make(chan change, len(statuses))

	var wg sync.WaitGroup
	for _, status := range statuses {
		wg.Add(1)
		go func(status string) {
			defer wg.Done()
			updated, err := f.orders.UpdateStatus(context.Background(), orderdomain.UpdateStatusRequest{
				OrderID: view.ID.String(),
				Status:  status,
				Actor:   f.server,
			})
			if err != nil {
				t.Errorf("update to %s: %v", status, err)
				return
			}
			changes <- change{status: status, version: updated.Version}
		}(status)
	}
	wg.Wait()
	close(changes)

	byVersion := make(map[int64]string, len(statuses))
	for c := range changes {
		byVersion[c.version] = c.status
	}
	if len(byVersion) != len(statuses) {
		t.Fatalf("got %d committed versions, want %d", len(byVersion), len(statuses))
	}

	admin, backlog, err := f.hub.Subscribe(realtime.RoomAdmin)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer admin.Close()

	var published []string
	for _, event := range backlog {
		if event.Name == realtime.EventOrderStatusChanged && event.OrderID == view.ID.String() {
			published = append(published, event.Status)
		}
	}
	if len(published) != len(statuses) {
		t.Fatalf("backlog has %d status events, want %d", len(published), len(statuses))
	}
	for i, status := range published {
		if want := byVersion[int64(i+1)]; status != want {
			t.Errorf("backlog[%d] = %s, want %s (version %d)", i, status, want, i+1)
		}
	}
}

func TestUpdateStatusFailures(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	view := f.createOrder(t, []orderdomain.CreateOrderItem{
		{MenuItemID: f.burger.ID.String(), Quantity: 1},
	})

	if _, err := f.orders.UpdateStatus(ctx, orderdomain.UpdateStatusRequest{
		OrderID: "72036854775807", Status: "ready", Actor: f.server,
	}); !errors.Is(err, orderdomain.ErrNotFound) {
		t.Errorf("missing order err = %v, want %v", err, orderdomain.ErrNotFound)
	}

	if _, err := f.orders.UpdateStatus(ctx, orderdomain.UpdateStatusRequest{
		OrderID: "garbage", Status: "ready", Actor: f.server,
	}); !errors.Is(err, orderdomain.ErrInvalidID) {
		t.Errorf("bad id err = %v, want %v", err, orderdomain.ErrInvalidID)
	}

	if _, err := f.orders.UpdateStatus(ctx, orderdomain.UpdateStatusRequest{
		OrderID: view.ID.String(), Status: "shipped", Actor: f.server,
	}); !errors.Is(err, orderdomain.ErrInvalidStatus) {
		t.Errorf("bad status err = %v, want %v", err, orderdomain.ErrInvalidStatus)
	}
}

func TestUpdateStatusStrictMode(t *testing.T) {
	f := setupFixture(t, true)
	ctx := context.Background()

	view := f.createOrder(t, []orderdomain.CreateOrderItem{
		{MenuItemID: f.burger.ID.String(), Quantity: 1},
	})

	if _, err := f.orders.UpdateStatus(ctx, orderdomain.UpdateStatusRequest{
		OrderID: view.ID.String(), Status: "completed", Actor: f.server,
	}); !errors.Is(err, orderdomain.ErrIllegalTransition) {
		t.Errorf("err = %v, want %v", err, orderdomain.ErrIllegalTransition)
	}

	if _, err := f.orders.UpdateStatus(ctx, orderdomain.UpdateStatusRequest{
		OrderID: view.ID.String(), Status: "preparing", Actor: f.server,
	}); err != nil {
		t.Errorf("legal transition rejected: %v", err)
	}
}

func TestListFiltersAndOrdering(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	first := f.createOrder(t, []orderdomain.CreateOrderItem{{MenuItemID: f.burger.ID.String(), Quantity: 1}})
	f.clock.Advance(time.Minute)
	second := f.createOrder(t, []orderdomain.CreateOrderItem{{MenuItemID: f.fries.ID.String(), Quantity: 2}})
	f.clock.Advance(time.Minute)

	phone := orderdomain.CustomerContact{Name: "Sam", Phone: "555-0101", Address: "12 High St"}
	third, err := f.orders.Create(ctx, orderdomain.CreateOrderRequest{
		Type:     "delivery",
		Customer: &phone,
		Items:    []orderdomain.CreateOrderItem{{MenuItemID: f.burger.ID.String(), Quantity: 1}},
		Server:   f.server,
	})
	if err != nil {
		t.Fatalf("create delivery order: %v", err)
	}

	if _, err := f.orders.UpdateStatus(ctx, orderdomain.UpdateStatusRequest{
		OrderID: second.ID.String(), Status: "ready", Actor: f.server,
	}); err != nil {
		t.Fatalf("update status: %v", err)
	}

	all, err := f.orders.List(ctx, orderdomain.ListOrdersRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list = %d orders, want 3", len(all))
	}
	if all[0].ID != third.ID || all[2].ID != first.ID {
		t.Error("orders not sorted newest first")
	}
	if all[0].ServerName != "Maria Lopez" {
		t.Errorf("server name = %q", all[0].ServerName)
	}

	kitchen, err := f.orders.List(ctx, orderdomain.ListOrdersRequest{KitchenView: true})
	if err != nil {
		t.Fatalf("kitchen list: %v", err)
	}
	if len(kitchen) != 2 {
		t.Errorf("kitchen view = %d orders, want 2 pending", len(kitchen))
	}
	for _, view := range kitchen {
		if view.Status != orderdomain.StatusPending && view.Status != orderdomain.StatusPreparing {
			t.Errorf("kitchen view leaked status %s", view.Status)
		}
	}

	ready, err := f.orders.List(ctx, orderdomain.ListOrdersRequest{Status: "ready"})
	if err != nil {
		t.Fatalf("status list: %v", err)
	}
	if len(ready) != 1 || ready[0].ID != second.ID {
		t.Errorf("status filter = %+v", ready)
	}

	deliveries, err := f.orders.List(ctx, orderdomain.ListOrdersRequest{Type: "delivery"})
	if err != nil {
		t.Fatalf("type list: %v", err)
	}
	if len(deliveries) != 1 || deliveries[0].ID != third.ID {
		t.Errorf("type filter = %+v", deliveries)
	}

	if _, err := f.orders.List(ctx, orderdomain.ListOrdersRequest{Status: "shipped"}); !errors.Is(err, orderdomain.ErrInvalidStatus) {
		t.Errorf("bad status filter err = %v", err)
	}
	if _, err := f.orders.List(ctx, orderdomain.ListOrdersRequest{Type: "drive-through"}); !errors.Is(err, orderdomain.ErrInvalidType) {
		t.Errorf("bad type filter err = %v", err)
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE staff (
			id BIGINT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE menu_items (
			id BIGINT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			price BIGINT NOT NULL,
			available BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE orders (
			id BIGINT PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			table_number BIGINT,
			customer TEXT,
			items TEXT NOT NULL,
			subtotal BIGINT NOT NULL,
			tax BIGINT NOT NULL,
			total BIGINT NOT NULL,
			status TEXT NOT NULL,
			server_id BIGINT NOT NULL,
			payment_status TEXT NOT NULL,
			payment_logs TEXT NOT NULL DEFAULT '[]',
			printed_count BIGINT NOT NULL DEFAULT 0,
			version BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE audit_logs (
			id BIGINT PRIMARY KEY,
			actor_type TEXT NOT NULL,
			actor_id TEXT,
			action TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id TEXT,
			metadata TEXT,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}
