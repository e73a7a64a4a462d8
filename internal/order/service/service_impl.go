package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/expediterhq/expediter/internal/audit/domain"
	"github.com/expediterhq/expediter/internal/clock"
	"github.com/expediterhq/expediter/internal/config"
	menudomain "github.com/expediterhq/expediter/internal/menu/domain"
	"github.com/expediterhq/expediter/internal/order/domain"
	"github.com/expediterhq/expediter/internal/order/pricing"
	"github.com/expediterhq/expediter/internal/order/statusflow"
	"github.com/expediterhq/expediter/internal/orderlock"
	"github.com/expediterhq/expediter/internal/realtime"
	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
	"github.com/expediterhq/expediter/pkg/db"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	orderNumberPrefix = "ORD"

	// guardRetries bounds the optimistic read-modify-write loop.
	guardRetries = 3
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Cfg       config.Config
	Settings  *config.SettingsHolder
	Clock     clock.Clock
	Repo      domain.Repository
	Menu      menudomain.Service
	Staff     staffdomain.Service
	Audit     auditdomain.Service
	Publisher realtime.Publisher
	Lock      *orderlock.Locker `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	cfg       config.Config
	settings  *config.SettingsHolder
	clock     clock.Clock
	repo      domain.Repository
	menu      menudomain.Service
	staff     staffdomain.Service
	audit     auditdomain.Service
	publisher realtime.Publisher
	lock      *orderlock.Locker

	// orderMu stripes serialize the commit-and-publish section per order,
	// so hub subscribers see one order's events in version order.
	orderMu [64]sync.Mutex
}

func (s *Service) orderStripe(id snowflake.ID) *sync.Mutex {
	return &s.orderMu[uint64(id)%uint64(len(s.orderMu))]
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("order.service"),
		genID:     p.GenID,
		cfg:       p.Cfg,
		settings:  p.Settings,
		clock:     p.Clock,
		repo:      p.Repo,
		menu:      p.Menu,
		staff:     p.Staff,
		audit:     p.Audit,
		publisher: p.Publisher,
		lock:      p.Lock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.OrderView, error) {
	orderType, ok := domain.ParseOrderType(strings.TrimSpace(req.Type))
	if !ok {
		return domain.OrderView{}, domain.ErrInvalidType
	}
	if orderType == domain.TypeDineIn && req.TableNumber == nil {
		return domain.OrderView{}, domain.ErrMissingTable
	}
	if orderType != domain.TypeDineIn {
		if req.Customer == nil ||
			strings.TrimSpace(req.Customer.Name) == "" ||
			strings.TrimSpace(req.Customer.Phone) == "" {
			return domain.OrderView{}, domain.ErrMissingCustomer
		}
	}
	if req.Server.ID == 0 {
		return domain.OrderView{}, staffdomain.ErrNotFound
	}

	quote, err := pricing.Price(ctx, req.Items, s.catalogLookup())
	if err != nil {
		return domain.OrderView{}, err
	}

	now := s.clock.Now()
	order := domain.Order{
		ID:            s.genID.Generate(),
		Type:          orderType,
		TableNumber:   req.TableNumber,
		Items:         datatypes.NewJSONSlice(quote.Items),
		Subtotal:      quote.Subtotal,
		Tax:           quote.Tax,
		Total:         quote.Total,
		Status:        domain.StatusPending,
		ServerID:      req.Server.ID,
		PaymentStatus: domain.PaymentPending,
		PaymentLogs:   datatypes.NewJSONSlice([]domain.PaymentLogEntry{}),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Customer != nil {
		order.Customer = datatypes.NewJSONType(*req.Customer)
	}

	pctx, cancel := s.persistCtx(ctx)
	defer cancel()

	// A fresh ULID suffix makes collisions vanishingly rare; one regeneration
	// covers the unlucky case, anything past that is a real conflict.
	for attempt := 0; ; attempt++ {
		order.OrderNumber = newOrderNumber()
		err := s.repo.Insert(pctx, s.db, &order)
		if err == nil {
			break
		}
		if db.IsDuplicateKeyErr(err) {
			if attempt == 0 {
				continue
			}
			return domain.OrderView{}, domain.ErrNumberConflict
		}
		return domain.OrderView{}, persistErr(err)
	}

	_ = s.audit.Record(ctx, req.Server, auditdomain.ActionOrderCreate, "order", order.ID.String(), map[string]any{
		"order_number": order.OrderNumber,
		"type":         string(order.Type),
		"total":        order.Total,
	})

	event, rooms := realtime.OrderCreated(order.ID, order.OrderNumber, order.ServerID, now)
	s.publisher.Publish(event, rooms...)

	return domain.OrderView{Order: order, ServerName: req.Server.Name}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.OrderView, error) {
	id, err := parseOrderID(req.OrderID)
	if err != nil {
		return domain.OrderView{}, err
	}
	status, ok := domain.ParseStatus(strings.TrimSpace(req.Status))
	if !ok {
		return domain.OrderView{}, domain.ErrInvalidStatus
	}

	strict := s.settings.Get().StrictTransitions

	pctx, cancel := s.persistCtx(ctx)
	defer cancel()

	release := s.lock.Acquire(pctx, id)
	defer release()

	stripe := s.orderStripe(id)
	stripe.Lock()
	defer stripe.Unlock()

	var order *domain.Order
	for attempt := 0; attempt < guardRetries; attempt++ {
		order, err = s.repo.FindByID(pctx, s.db, id)
		if err != nil {
			return domain.OrderView{}, persistErr(err)
		}
		if order == nil {
			return domain.OrderView{}, domain.ErrNotFound
		}
		if !statusflow.Allowed(order.Status, status, strict) {
			return domain.OrderView{}, domain.ErrIllegalTransition
		}

		now := s.clock.Now()
		applied, err := s.repo.UpdateStatus(pctx, s.db, id, status, now, order.Version)
		if err != nil {
			return domain.OrderView{}, persistErr(err)
		}
		if !applied {
			continue
		}

		order.Status = status
		order.UpdatedAt = now
		order.Version++

		_ = s.audit.Record(ctx, req.Actor, auditdomain.ActionStatusChange, "order", order.ID.String(), map[string]any{
			"order_number": order.OrderNumber,
			"status":       string(status),
		})

		event, rooms := realtime.StatusChanged(order.ID, order.OrderNumber, string(status), now)
		s.publisher.Publish(event, rooms...)

		return s.toView(ctx, order), nil
	}
	return domain.OrderView{}, domain.ErrConcurrentUpdate
}

func (s *Service) List(ctx context.Context, req domain.ListOrdersRequest) ([]domain.OrderView, error) {
	var filter domain.ListFilter
	filter.KitchenView = req.KitchenView

	if raw := strings.TrimSpace(req.Status); raw != "" && !req.KitchenView {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.Type); raw != "" {
		orderType, ok := domain.ParseOrderType(raw)
		if !ok {
			return nil, domain.ErrInvalidType
		}
		filter.Type = orderType
	}

	orders, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	names := make(map[snowflake.ID]string, 4)
	views := make([]domain.OrderView, 0, len(orders))
	for _, order := range orders {
		if order == nil {
			continue
		}
		name, cached := names[order.ServerID]
		if !cached {
			name = s.serverName(ctx, order.ServerID)
			names[order.ServerID] = name
		}
		views = append(views, domain.OrderView{Order: *order, ServerName: name})
	}
	return views, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.OrderView, error) {
	id, err := parseOrderID(rawID)
	if err != nil {
		return domain.OrderView{}, err
	}
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.OrderView{}, err
	}
	if order == nil {
		return domain.OrderView{}, domain.ErrNotFound
	}
	return s.toView(ctx, order), nil
}

func (s *Service) catalogLookup() pricing.Lookup {
	return func(ctx context.Context, id snowflake.ID) (pricing.CatalogItem, bool, error) {
		item, err := s.menu.Lookup(ctx, id)
		if err != nil {
			if errors.Is(err, menudomain.ErrNotFound) {
				return pricing.CatalogItem{}, false, nil
			}
			return pricing.CatalogItem{}, false, err
		}
		return pricing.CatalogItem{
			Name:      item.Name,
			Price:     item.Price,
			Available: item.Available,
		}, true, nil
	}
}

func (s *Service) toView(ctx context.Context, order *domain.Order) domain.OrderView {
	return domain.OrderView{
		Order:      *order,
		ServerName: s.serverName(ctx, order.ServerID),
	}
}

func (s *Service) serverName(ctx context.Context, id snowflake.ID) string {
	identity, err := s.staff.Resolve(ctx, id.String())
	if err != nil {
		s.log.Debug("resolve server name", zap.String("staff_id", id.String()), zap.Error(err))
		return ""
	}
	return identity.Name
}

func (s *Service) persistCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.cfg.PersistTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func newOrderNumber() string {
	return orderNumberPrefix + ulid.Make().String()
}

func parseOrderID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func persistErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout
	}
	return err
}
