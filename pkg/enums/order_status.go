package enums

import "fmt"

// OrderStatus is the order lifecycle state machine. HOLDING is a reservation
// placeholder with no stock or funds committed; states past PAID are shipping
// pipeline labels driven outside the engine.
type OrderStatus string

const (
	OrderStatusHolding    OrderStatus = "HOLDING"
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusWait       OrderStatus = "WAIT"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusWaitShip   OrderStatus = "WAIT_SHIP"
	OrderStatusShipping   OrderStatus = "SHIPPING"
	OrderStatusWaitPickup OrderStatus = "WAIT_PICKUP"
	OrderStatusDone       OrderStatus = "DONE"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusHolding,
	OrderStatusPending,
	OrderStatusWait,
	OrderStatusPaid,
	OrderStatusWaitShip,
	OrderStatusShipping,
	OrderStatusWaitPickup,
	OrderStatusDone,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
