package domain

import (
	"time"

	orderdomain "github.com/expediterhq/expediter/internal/order/domain"
)

type ReceiptLine struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
	Total    int64  `json:"total"`
	Notes    string `json:"notes,omitempty"`
}

type ReceiptPayment struct {
	Method         orderdomain.PaymentMethod `json:"method"`
	Amount         int64                     `json:"amount"`
	CardLastDigits string                    `json:"card_last_digits,omitempty"`
	ReceiptNumber  string                    `json:"receipt_number,omitempty"`
}

// Receipt is the projection handed to printers and PDF rendering. Both the
// post-payment response and the print endpoint build it here so the two can
// never drift apart.
type Receipt struct {
	OrderNumber      string                       `json:"order_number"`
	Type             string                       `json:"type"`
	Timestamp        time.Time                    `json:"timestamp"`
	Items            []ReceiptLine                `json:"items"`
	Subtotal         int64                        `json:"subtotal"`
	Tax              int64                        `json:"tax"`
	Total            int64                        `json:"total"`
	Currency         string                       `json:"currency"`
	TableNumber      *int64                       `json:"table,omitempty"`
	Customer         *orderdomain.CustomerContact `json:"customer,omitempty"`
	ServerName       string                       `json:"server_name"`
	Payment          *ReceiptPayment              `json:"payment,omitempty"`
	RemainingBalance *int64                       `json:"remaining_balance,omitempty"`
	Footer           string                       `json:"footer,omitempty"`
}

// BuildReceipt projects an order into a printable receipt. A non-nil payment
// marks the entry this receipt acknowledges; kitchen copies carry neither
// payment nor balance.
func BuildReceipt(view orderdomain.OrderView, receiptType string, payment *orderdomain.PaymentLogEntry, currency, footer string, at time.Time) Receipt {
	receipt := Receipt{
		OrderNumber: view.OrderNumber,
		Type:        receiptType,
		Timestamp:   at,
		Subtotal:    view.Subtotal,
		Tax:         view.Tax,
		Total:       view.Total,
		Currency:    currency,
		TableNumber: view.TableNumber,
		ServerName:  view.ServerName,
		Footer:      footer,
	}

	receipt.Items = make([]ReceiptLine, 0, len(view.Items))
	for _, line := range view.Items {
		receipt.Items = append(receipt.Items, ReceiptLine{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
			Total:    line.Price * line.Quantity,
			Notes:    line.Notes,
		})
	}

	if contact := view.Customer.Data(); contact.Name != "" || contact.Phone != "" {
		receipt.Customer = &contact
	}

	if receiptType == ReceiptTypeKitchen {
		return receipt
	}

	if payment != nil {
		receipt.Payment = &ReceiptPayment{
			Method:         payment.Method,
			Amount:         payment.Amount,
			CardLastDigits: payment.CardLastDigits,
			ReceiptNumber:  payment.ReceiptNumber,
		}
	}
	remaining := view.RemainingBalance()
	receipt.RemainingBalance = &remaining
	return receipt
}
