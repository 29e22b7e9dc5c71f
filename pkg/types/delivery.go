package types

// Customer is the snapshot of the buyer stored on an order.
type Customer struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// OrderItem is a single line on an order.
type OrderItem struct {
	Name     string  `json:"name" validate:"required"`
	Quantity int     `json:"quantity" validate:"gte=1"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// Shift is a partner's working window, kept as the dashboard's "HH:MM" strings.
type Shift struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// PartnerMetrics holds the counters shown on a partner card.
type PartnerMetrics struct {
	Rating          float64 `json:"rating"`
	CompletedOrders int     `json:"completedOrders"`
	CancelledOrders int     `json:"cancelledOrders"`
}
