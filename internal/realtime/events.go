package realtime

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

const (
	RoomAdmin   = "admin"
	RoomChef    = "chef"
	RoomWaiter  = "waiter"
	RoomCashier = "cashier"
)

// UserRoom is the private room of one staff member; every session joins
// its own user room alongside its role room.
func UserRoom(id snowflake.ID) string {
	return fmt.Sprintf("user_%s", id)
}

// Event is the wire shape pushed to subscribers. Payload fields beyond the
// id are fixed per event name; handlers fill only what their event carries.
type Event struct {
	Name        string    `json:"event"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status,omitempty"`
	Message     string    `json:"message,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderCreated builds the creation event and its target rooms: the kitchen,
// the admins, and the private room of the server who took the order.
func OrderCreated(orderID snowflake.ID, orderNumber string, serverID snowflake.ID, at time.Time) (Event, []string) {
	event := Event{
		Name:        EventOrderCreated,
		OrderID:     orderID.String(),
		OrderNumber: orderNumber,
		UpdatedAt:   at,
	}
	return event, []string{RoomChef, RoomAdmin, UserRoom(serverID)}
}

// StatusChanged builds the status event for the broad front-of-house
// broadcast.
func StatusChanged(orderID snowflake.ID, orderNumber, status string, at time.Time) (Event, []string) {
	event := Event{
		Name:        EventOrderStatusChanged,
		OrderID:     orderID.String(),
		OrderNumber: orderNumber,
		Status:      status,
		Message:     fmt.Sprintf("Order %s status changed to %s", orderNumber, status),
		UpdatedAt:   at,
	}
	return event, []string{RoomAdmin, RoomChef, RoomWaiter}
}
