package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	orderdomain "github.com/expediterhq/expediter/internal/order/domain"
	"go.uber.org/zap"
)

// TerminalGateway talks to the card terminal vendor's HTTP API for refunds.
// With no endpoint configured it acknowledges locally, which is how dev and
// cash-only sites run.
type TerminalGateway struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

func NewTerminalGateway(endpoint string, log *zap.Logger) *TerminalGateway {
	return &TerminalGateway{
		endpoint: strings.TrimSpace(endpoint),
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log.Named("gateway.terminal"),
	}
}

func (g *TerminalGateway) Method() string {
	return string(orderdomain.MethodCardMachine)
}

func (g *TerminalGateway) Refund(ctx context.Context, req RefundRequest) error {
	if g.endpoint == "" {
		g.log.Info("terminal endpoint not configured, acknowledging refund locally",
			zap.String("order_number", req.OrderNumber))
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"order_number": req.OrderNumber,
		"amount":       req.Amount,
		"currency":     req.Currency,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/refunds", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("terminal refund rejected: %s", resp.Status)
	}
	return nil
}
