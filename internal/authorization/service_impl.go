package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/expediterhq/expediter/internal/audit/domain"
	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectOrder   = "order"
	ObjectPayment = "payment"
	ObjectReceipt = "receipt"
	ObjectEvents  = "events"
	ObjectMenu    = "menu"
	ObjectStaff   = "staff"
	ObjectAudit   = "audit_log"
)

const (
	ActionOrderCreate  = "order.create"
	ActionOrderStatus  = "order.status_change"
	ActionOrderView    = "order.view"
	ActionKitchenView  = "order.kitchen_view"
	ActionPaymentLog   = "payment.log"
	ActionRefund       = "payment.refund"
	ActionReceiptPrint = "receipt.print"
	ActionReceiptView  = "receipt.view"
	ActionSubscribe    = "events.subscribe"
	ActionMenuManage   = "menu.manage"
	ActionStaffManage  = "staff.manage"
	ActionAuditView    = "audit_log.view"
)

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

type Service interface {
	Authorize(ctx context.Context, actor staffdomain.Identity, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor staffdomain.Identity, object, action string) error {
	if actor.ID == 0 {
		return ErrInvalidActor
	}
	if _, ok := staffdomain.ParseRole(string(actor.Role)); !ok {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := fmt.Sprintf("staff:%s", actor.ID)
	roleName := fmt.Sprintf("role:%s", actor.Role)
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actor, object, action)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps each staff member bound to exactly their current
// role; a role change in the directory supersedes old grants on next use.
func (s *ServiceImpl) ensureGrouping(subject, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actor staffdomain.Identity, object, action string) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.Record(ctx, actor, "authorization.denied", "authorization", object, map[string]any{
		"object": object,
		"action": action,
		"role":   string(actor.Role),
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Admin can do everything.
		{"role:admin", ObjectOrder, ActionOrderCreate},
		{"role:admin", ObjectOrder, ActionOrderStatus},
		{"role:admin", ObjectOrder, ActionOrderView},
		{"role:admin", ObjectOrder, ActionKitchenView},
		{"role:admin", ObjectPayment, ActionPaymentLog},
		{"role:admin", ObjectPayment, ActionRefund},
		{"role:admin", ObjectReceipt, ActionReceiptPrint},
		{"role:admin", ObjectReceipt, ActionReceiptView},
		{"role:admin", ObjectEvents, ActionSubscribe},
		{"role:admin", ObjectMenu, ActionMenuManage},
		{"role:admin", ObjectStaff, ActionStaffManage},
		{"role:admin", ObjectAudit, ActionAuditView},

		// Chef runs the kitchen.
		{"role:chef", ObjectOrder, ActionOrderStatus},
		{"role:chef", ObjectOrder, ActionOrderView},
		{"role:chef", ObjectOrder, ActionKitchenView},
		{"role:chef", ObjectReceipt, ActionReceiptPrint},
		{"role:chef", ObjectEvents, ActionSubscribe},

		// Waiter takes orders.
		{"role:waiter", ObjectOrder, ActionOrderCreate},
		{"role:waiter", ObjectOrder, ActionOrderView},
		{"role:waiter", ObjectReceipt, ActionReceiptPrint},
		{"role:waiter", ObjectEvents, ActionSubscribe},

		// Cashier settles the bill.
		{"role:cashier", ObjectOrder, ActionOrderCreate},
		{"role:cashier", ObjectOrder, ActionOrderView},
		{"role:cashier", ObjectPayment, ActionPaymentLog},
		{"role:cashier", ObjectReceipt, ActionReceiptPrint},
		{"role:cashier", ObjectReceipt, ActionReceiptView},
		{"role:cashier", ObjectEvents, ActionSubscribe},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
