package gateway

import (
	"context"
	"errors"
	"strings"
)

type RefundRequest struct {
	OrderNumber string
	Amount      int64
	Currency    string
}

// Gateway is the external settlement collaborator for one payment method.
type Gateway interface {
	Method() string
	Refund(ctx context.Context, req RefundRequest) error
}

var ErrMethodNotFound = errors.New("gateway_method_not_found")

type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	registry := &Registry{gateways: map[string]Gateway{}}
	for _, g := range gateways {
		if g == nil {
			continue
		}
		method := strings.ToLower(strings.TrimSpace(g.Method()))
		if method == "" {
			continue
		}
		registry.gateways[method] = g
	}
	return registry
}

func (r *Registry) Resolve(method string) (Gateway, error) {
	if r == nil {
		return nil, ErrMethodNotFound
	}
	method = strings.ToLower(strings.TrimSpace(method))
	g, ok := r.gateways[method]
	if !ok {
		return nil, ErrMethodNotFound
	}
	return g, nil
}
