package enums

// OrderStatus tracks the local lifecycle of a paid checkout session. Orders
// are terminal once written, so the set is intentionally small.
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCanceled  OrderStatus = "canceled"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}
