package pricing

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/expediterhq/expediter/internal/order/domain"
)

// TaxRateBasisPoints is the fixed sales tax applied at order creation.
const TaxRateBasisPoints = 1000 // 10%

// CatalogItem is the slice of the menu catalog the calculator needs.
type CatalogItem struct {
	Name      string
	Price     int64
	Available bool
}

// Lookup resolves a menu item id. The bool reports whether the id exists.
type Lookup func(ctx context.Context, id snowflake.ID) (CatalogItem, bool, error)

// Quote is the priced order: resolved lines with captured unit prices, and
// the stored monetary fields. All amounts are minor units.
type Quote struct {
	Items    []domain.LineItem
	Subtotal int64
	Tax      int64
	Total    int64
}

// Price validates and prices a line-item list against live catalog data.
// Pure aside from the injected lookup; it never persists anything, so a
// failing line leaves no partial state behind.
func Price(ctx context.Context, items []domain.CreateOrderItem, lookup Lookup) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, domain.ErrEmptyOrder
	}

	lines := make([]domain.LineItem, 0, len(items))
	var subtotal int64

	for _, item := range items {
		if item.Quantity < 1 {
			return Quote{}, domain.ErrInvalidQuantity
		}

		id, err := snowflake.ParseString(strings.TrimSpace(item.MenuItemID))
		if err != nil || id == 0 {
			return Quote{}, domain.ErrUnknownItem
		}

		resolved, found, err := lookup(ctx, id)
		if err != nil {
			return Quote{}, err
		}
		if !found {
			return Quote{}, domain.ErrUnknownItem
		}
		if !resolved.Available {
			return Quote{}, domain.ErrItemUnavailable
		}

		subtotal += resolved.Price * item.Quantity
		lines = append(lines, domain.LineItem{
			MenuItemID: id,
			Name:       resolved.Name,
			Quantity:   item.Quantity,
			Price:      resolved.Price,
			Notes:      strings.TrimSpace(item.Notes),
		})
	}

	// Tax is rounded half-up to the cent once, at tax computation, not per
	// line. With basis points: tax = subtotal * rate / 10000.
	tax := (subtotal*TaxRateBasisPoints + 5000) / 10000
	return Quote{
		Items:    lines,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}, nil
}
