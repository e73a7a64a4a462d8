package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/expediterhq/expediter/internal/audit/domain"
	"github.com/expediterhq/expediter/internal/clock"
	"github.com/expediterhq/expediter/internal/config"
	orderdomain "github.com/expediterhq/expediter/internal/order/domain"
	"github.com/expediterhq/expediter/internal/orderlock"
	paymentdomain "github.com/expediterhq/expediter/internal/payment/domain"
	"github.com/expediterhq/expediter/internal/payment/gateway"
	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const guardRetries = 3

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Cfg      config.Config
	Settings *config.SettingsHolder
	Clock    clock.Clock
	Orders   orderdomain.Repository
	Staff    staffdomain.Service
	Audit    auditdomain.Service
	Gateways *gateway.Registry
	Lock     *orderlock.Locker `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      config.Config
	settings *config.SettingsHolder
	clock    clock.Clock
	orders   orderdomain.Repository
	staff    staffdomain.Service
	audit    auditdomain.Service
	gateways *gateway.Registry
	lock     *orderlock.Locker
}

func New(p Params) paymentdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		cfg:      p.Cfg,
		settings: p.Settings,
		clock:    p.Clock,
		orders:   p.Orders,
		staff:    p.Staff,
		audit:    p.Audit,
		gateways: p.Gateways,
		lock:     p.Lock,
	}
}

func (s *Service) LogPayment(ctx context.Context, req paymentdomain.LogPaymentRequest) (paymentdomain.LogPaymentResult, error) {
	id, err := parseOrderID(req.OrderID)
	if err != nil {
		return paymentdomain.LogPaymentResult{}, err
	}
	if req.Amount <= 0 {
		return paymentdomain.LogPaymentResult{}, paymentdomain.ErrInvalidAmount
	}
	method, ok := orderdomain.ParsePaymentMethod(strings.TrimSpace(req.Method))
	if !ok {
		return paymentdomain.LogPaymentResult{}, paymentdomain.ErrInvalidMethod
	}
	digits := strings.TrimSpace(req.CardLastDigits)
	if method == orderdomain.MethodCardMachine && digits != "" && len(digits) != 4 {
		return paymentdomain.LogPaymentResult{}, paymentdomain.ErrInvalidCardDigits
	}
	if method != orderdomain.MethodCardMachine {
		digits = ""
	}

	pctx, cancel := s.persistCtx(ctx)
	defer cancel()

	release := s.lock.Acquire(pctx, id)
	defer release()

	for attempt := 0; attempt < guardRetries; attempt++ {
		order, err := s.orders.FindByID(pctx, s.db, id)
		if err != nil {
			return paymentdomain.LogPaymentResult{}, persistErr(err)
		}
		if order == nil {
			return paymentdomain.LogPaymentResult{}, orderdomain.ErrNotFound
		}

		now := s.clock.Now()
		entry := orderdomain.PaymentLogEntry{
			Amount:         req.Amount,
			Method:         method,
			CardLastDigits: digits,
			ReceiptNumber:  strings.TrimSpace(req.ReceiptNumber),
			LoggedByID:     req.Actor.ID,
			CashierName:    req.Actor.Name,
			Notes:          strings.TrimSpace(req.Notes),
			Timestamp:      now,
		}

		logs := append([]orderdomain.PaymentLogEntry(order.PaymentLogs), entry)
		var paid int64
		for _, logged := range logs {
			paid += logged.Amount
		}
		status := derivePaymentStatus(order.PaymentStatus, paid, order.Total)

		applied, err := s.orders.UpdatePayment(pctx, s.db, id, datatypes.NewJSONSlice(logs), status, now, order.Version)
		if err != nil {
			return paymentdomain.LogPaymentResult{}, persistErr(err)
		}
		if !applied {
			continue
		}

		order.PaymentLogs = datatypes.NewJSONSlice(logs)
		order.PaymentStatus = status
		order.UpdatedAt = now
		order.Version++

		_ = s.audit.Record(ctx, req.Actor, auditdomain.ActionPaymentLog, "order", order.ID.String(), map[string]any{
			"order_number":     order.OrderNumber,
			"amount":           req.Amount,
			"method":           string(method),
			"card_last_digits": digits,
			"payment_status":   string(status),
		})

		view := s.toView(ctx, order)
		settings := s.settings.Get()
		receipt := paymentdomain.BuildReceipt(view, paymentdomain.ReceiptTypeCustomer, &entry, settings.Currency, settings.ReceiptFooter, now)
		return paymentdomain.LogPaymentResult{
			Order:            view,
			Receipt:          receipt,
			RemainingBalance: order.RemainingBalance(),
		}, nil
	}
	return paymentdomain.LogPaymentResult{}, orderdomain.ErrConcurrentUpdate
}

func (s *Service) PrintReceipt(ctx context.Context, req paymentdomain.PrintReceiptRequest) (paymentdomain.PrintReceiptResult, error) {
	id, err := parseOrderID(req.OrderID)
	if err != nil {
		return paymentdomain.PrintReceiptResult{}, err
	}
	receiptType := strings.TrimSpace(req.Type)
	if receiptType != paymentdomain.ReceiptTypeCustomer && receiptType != paymentdomain.ReceiptTypeKitchen {
		return paymentdomain.PrintReceiptResult{}, paymentdomain.ErrInvalidReceiptType
	}

	pctx, cancel := s.persistCtx(ctx)
	defer cancel()

	order, err := s.orders.FindByID(pctx, s.db, id)
	if err != nil {
		return paymentdomain.PrintReceiptResult{}, persistErr(err)
	}
	if order == nil {
		return paymentdomain.PrintReceiptResult{}, orderdomain.ErrNotFound
	}

	now := s.clock.Now()
	applied, err := s.orders.IncrementPrinted(pctx, s.db, id, now)
	if err != nil {
		return paymentdomain.PrintReceiptResult{}, persistErr(err)
	}
	if !applied {
		return paymentdomain.PrintReceiptResult{}, orderdomain.ErrNotFound
	}
	order.PrintedCount++
	order.UpdatedAt = now

	_ = s.audit.Record(ctx, req.Actor, auditdomain.ActionReceiptPrint, "order", order.ID.String(), map[string]any{
		"order_number": order.OrderNumber,
		"receipt_type": receiptType,
	})

	var lastPayment *orderdomain.PaymentLogEntry
	if n := len(order.PaymentLogs); n > 0 {
		entry := order.PaymentLogs[n-1]
		lastPayment = &entry
	}

	settings := s.settings.Get()
	receipt := paymentdomain.BuildReceipt(s.toView(ctx, order), receiptType, lastPayment, settings.Currency, settings.ReceiptFooter, now)
	return paymentdomain.PrintReceiptResult{
		Receipt:      receipt,
		PrintedCount: order.PrintedCount,
	}, nil
}

func (s *Service) RefundPayment(ctx context.Context, orderID string, actor staffdomain.Identity) (orderdomain.OrderView, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return orderdomain.OrderView{}, err
	}

	pctx, cancel := s.persistCtx(ctx)
	defer cancel()

	release := s.lock.Acquire(pctx, id)
	defer release()

	for attempt := 0; attempt < guardRetries; attempt++ {
		order, err := s.orders.FindByID(pctx, s.db, id)
		if err != nil {
			return orderdomain.OrderView{}, persistErr(err)
		}
		if order == nil {
			return orderdomain.OrderView{}, orderdomain.ErrNotFound
		}

		// Card money moved through the terminal, so the terminal must hand
		// it back before we mark anything refunded locally.
		if cardPaid(order.PaymentLogs) {
			g, err := s.gateways.Resolve(string(orderdomain.MethodCardMachine))
			if err != nil {
				return orderdomain.OrderView{}, fmt.Errorf("%w: %v", paymentdomain.ErrGateway, err)
			}
			if err := g.Refund(ctx, gateway.RefundRequest{
				OrderNumber: order.OrderNumber,
				Amount:      order.TotalPaid(),
				Currency:    s.settings.Get().Currency,
			}); err != nil {
				s.log.Warn("gateway refund failed",
					zap.String("order_number", order.OrderNumber), zap.Error(err))
				return orderdomain.OrderView{}, fmt.Errorf("%w: %v", paymentdomain.ErrGateway, err)
			}
		}

		now := s.clock.Now()
		applied, err := s.orders.UpdatePaymentStatus(pctx, s.db, id, orderdomain.PaymentRefunded, now, order.Version)
		if err != nil {
			return orderdomain.OrderView{}, persistErr(err)
		}
		if !applied {
			continue
		}

		order.PaymentStatus = orderdomain.PaymentRefunded
		order.UpdatedAt = now
		order.Version++

		_ = s.audit.Record(ctx, actor, auditdomain.ActionRefund, "order", order.ID.String(), map[string]any{
			"order_number": order.OrderNumber,
			"refunded":     order.TotalPaid(),
		})

		return s.toView(ctx, order), nil
	}
	return orderdomain.OrderView{}, orderdomain.ErrConcurrentUpdate
}

func derivePaymentStatus(current orderdomain.PaymentStatus, paid, total int64) orderdomain.PaymentStatus {
	switch {
	case paid >= total:
		return orderdomain.PaymentPaid
	case paid > 0:
		return orderdomain.PaymentPartiallyPaid
	default:
		return current
	}
}

func cardPaid(logs []orderdomain.PaymentLogEntry) bool {
	for _, entry := range logs {
		if entry.Method == orderdomain.MethodCardMachine {
			return true
		}
	}
	return false
}

func (s *Service) toView(ctx context.Context, order *orderdomain.Order) orderdomain.OrderView {
	view := orderdomain.OrderView{Order: *order}
	identity, err := s.staff.Resolve(ctx, order.ServerID.String())
	if err != nil {
		s.log.Debug("resolve server name", zap.String("staff_id", order.ServerID.String()), zap.Error(err))
		return view
	}
	view.ServerName = identity.Name
	return view
}

func (s *Service) persistCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.cfg.PersistTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func parseOrderID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, orderdomain.ErrInvalidID
	}
	return id, nil
}

func persistErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return orderdomain.ErrTimeout
	}
	return err
}
