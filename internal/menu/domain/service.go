package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateMenuItemRequest struct {
	Name  string
	Price int64
}

// Service is the catalog contract the order core depends on. Lookup is the
// hot path during order creation; the rest exists for seeding and back
// office tooling.
type Service interface {
	Create(ctx context.Context, req CreateMenuItemRequest) (MenuItem, error)
	Lookup(ctx context.Context, id snowflake.ID) (MenuItem, error)
	List(ctx context.Context) ([]MenuItem, error)
	SetAvailability(ctx context.Context, id snowflake.ID, available bool) error
}

var (
	ErrInvalidName  = errors.New("invalid_item_name")
	ErrInvalidPrice = errors.New("invalid_item_price")
	ErrNotFound     = errors.New("menu_item_not_found")
)
