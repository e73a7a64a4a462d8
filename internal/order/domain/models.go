package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type OrderType string

const (
	TypeDineIn   OrderType = "dine-in"
	TypeTakeaway OrderType = "takeaway"
	TypeDelivery OrderType = "delivery"
)

func ParseOrderType(raw string) (OrderType, bool) {
	switch OrderType(raw) {
	case TypeDineIn, TypeTakeaway, TypeDelivery:
		return OrderType(raw), true
	default:
		return "", false
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return Status(raw), true
	default:
		return "", false
	}
}

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
	PaymentRefunded      PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	MethodCash        PaymentMethod = "cash"
	MethodCardMachine PaymentMethod = "card_machine"
)

func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch PaymentMethod(raw) {
	case MethodCash, MethodCardMachine:
		return PaymentMethod(raw), true
	default:
		return "", false
	}
}

// LineItem is a catalog reference frozen at order time. Price is the unit
// price in minor units captured at creation; later menu edits never touch
// historical orders.
type LineItem struct {
	MenuItemID snowflake.ID `json:"menu_item_id"`
	Name       string       `json:"name"`
	Quantity   int64        `json:"quantity"`
	Price      int64        `json:"price"`
	Notes      string       `json:"notes,omitempty"`
}

type CustomerContact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// PaymentLogEntry is append-only; entries are never edited or removed.
type PaymentLogEntry struct {
	Amount         int64         `json:"amount"`
	Method         PaymentMethod `json:"method"`
	CardLastDigits string        `json:"card_last_digits,omitempty"`
	ReceiptNumber  string        `json:"receipt_number,omitempty"`
	LoggedByID     snowflake.ID  `json:"logged_by_id"`
	CashierName    string        `json:"cashier_name"`
	Notes          string        `json:"notes,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// Order is the persisted aggregate. Lines, the customer projection and the
// payment ledger live inside the row as JSON documents; subtotal, tax and
// total are computed once at creation and stored for audit stability.
type Order struct {
	ID            snowflake.ID                         `gorm:"primaryKey" json:"id"`
	OrderNumber   string                               `gorm:"not null;uniqueIndex" json:"order_number"`
	Type          OrderType                            `gorm:"not null" json:"type"`
	TableNumber   *int64                               `gorm:"column:table_number" json:"table,omitempty"`
	Customer      datatypes.JSONType[CustomerContact]  `gorm:"type:jsonb" json:"customer,omitzero"`
	Items         datatypes.JSONSlice[LineItem]        `gorm:"type:jsonb;not null" json:"items"`
	Subtotal      int64                                `gorm:"not null" json:"subtotal"`
	Tax           int64                                `gorm:"not null" json:"tax"`
	Total         int64                                `gorm:"not null" json:"total"`
	Status        Status                               `gorm:"not null" json:"status"`
	ServerID      snowflake.ID                         `gorm:"not null" json:"server_id"`
	PaymentStatus PaymentStatus                        `gorm:"not null" json:"payment_status"`
	PaymentLogs   datatypes.JSONSlice[PaymentLogEntry] `gorm:"type:jsonb;not null" json:"payment_logs"`
	PrintedCount  int64                                `gorm:"not null;default:0" json:"printed_count"`
	Version       int64                                `gorm:"not null;default:0" json:"-"`
	CreatedAt     time.Time                            `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time                            `gorm:"not null" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// TotalPaid sums the ledger. The ledger is small (a handful of partial
// payments at most) so summation on read is fine.
func (o *Order) TotalPaid() int64 {
	var paid int64
	for _, entry := range o.PaymentLogs {
		paid += entry.Amount
	}
	return paid
}

// RemainingBalance is never negative; overpayment reads as zero due.
func (o *Order) RemainingBalance() int64 {
	remaining := o.Total - o.TotalPaid()
	if remaining < 0 {
		return 0
	}
	return remaining
}
