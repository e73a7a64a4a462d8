package gateway

import (
	"context"

	orderdomain "github.com/expediterhq/expediter/internal/order/domain"
)

// CashGateway settles nothing externally; cash refunds happen at the drawer.
type CashGateway struct{}

func NewCashGateway() *CashGateway {
	return &CashGateway{}
}

func (g *CashGateway) Method() string {
	return string(orderdomain.MethodCash)
}

func (g *CashGateway) Refund(context.Context, RefundRequest) error {
	return nil
}
