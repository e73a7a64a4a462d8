package domain

import (
	"context"
	"errors"

	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
)

type CreateOrderItem struct {
	MenuItemID string
	Quantity   int64
	Notes      string
}

type CreateOrderRequest struct {
	Type        string
	TableNumber *int64
	Customer    *CustomerContact
	Items       []CreateOrderItem
	Server      staffdomain.Identity
}

type UpdateStatusRequest struct {
	OrderID string
	Status  string
	Actor   staffdomain.Identity
}

type ListOrdersRequest struct {
	Status      string
	Type        string
	KitchenView bool
}

// OrderView is an order resolved for clients: the server's display name is
// joined in so front-of-house screens don't need a second lookup.
type OrderView struct {
	Order
	ServerName string `json:"server_name"`
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (OrderView, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (OrderView, error)
	List(ctx context.Context, req ListOrdersRequest) ([]OrderView, error)
	GetByID(ctx context.Context, id string) (OrderView, error)
}

var (
	ErrInvalidID          = errors.New("invalid_order_id")
	ErrNotFound           = errors.New("order_not_found")
	ErrEmptyOrder         = errors.New("empty_order")
	ErrUnknownItem        = errors.New("unknown_menu_item")
	ErrItemUnavailable    = errors.New("menu_item_unavailable")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidType        = errors.New("invalid_order_type")
	ErrMissingTable       = errors.New("missing_table_number")
	ErrMissingCustomer    = errors.New("missing_customer_contact")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrIllegalTransition  = errors.New("illegal_status_transition")
	ErrNumberConflict     = errors.New("order_number_conflict")
	ErrConcurrentUpdate   = errors.New("concurrent_update")
	ErrTimeout            = errors.New("persistence_timeout")
)
