package domain

import (
	"context"
	"errors"

	orderdomain "github.com/expediterhq/expediter/internal/order/domain"
	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
)

const (
	ReceiptTypeCustomer = "customer"
	ReceiptTypeKitchen  = "kitchen"
)

type LogPaymentRequest struct {
	OrderID        string
	Amount         int64
	Method         string
	CardLastDigits string
	ReceiptNumber  string
	Notes          string
	Actor          staffdomain.Identity
}

type LogPaymentResult struct {
	Order            orderdomain.OrderView
	Receipt          Receipt
	RemainingBalance int64
}

type PrintReceiptRequest struct {
	OrderID string
	Type    string
	Actor   staffdomain.Identity
}

type PrintReceiptResult struct {
	Receipt      Receipt
	PrintedCount int64
}

type Service interface {
	// LogPayment appends a ledger entry and re-derives the order's payment
	// status. The ledger is append-only; amounts are never edited afterward.
	LogPayment(ctx context.Context, req LogPaymentRequest) (LogPaymentResult, error)

	// PrintReceipt builds a receipt projection and bumps the print counter.
	// Payment state is never touched here.
	PrintReceipt(ctx context.Context, req PrintReceiptRequest) (PrintReceiptResult, error)

	// RefundPayment marks the order refunded. Card-paid orders clear through
	// the gateway first; a gateway failure leaves local state untouched.
	RefundPayment(ctx context.Context, orderID string, actor staffdomain.Identity) (orderdomain.OrderView, error)
}

var (
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidMethod      = errors.New("invalid_payment_method")
	ErrInvalidCardDigits  = errors.New("invalid_card_digits")
	ErrInvalidReceiptType = errors.New("invalid_receipt_type")
	ErrGateway            = errors.New("gateway_refund_failed")
)
