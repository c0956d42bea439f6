package order

import (
	"github.com/kraijai/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Snapshot is the slice of an order that dashboard statistics need.
type Snapshot struct {
	Status      string
	OrderType   string
	TotalAmount decimal.Decimal
}

// Stats summarizes a set of orders.
type Stats struct {
	TotalOrders     int
	TotalRevenue    decimal.Decimal
	ActiveOrders    int
	CompletedOrders int
	CancelledOrders int
	ByType          map[string]int
}

// Summarize counts orders by status and type. Cancelled orders are counted
// but contribute nothing to revenue.
func Summarize(orders []Snapshot) Stats {
	s := Stats{
		TotalRevenue: decimal.Zero,
		ByType: map[string]int{
			enum.OrderTypeDineIn:   0,
			enum.OrderTypeDelivery: 0,
		},
	}
	for _, o := range orders {
		s.TotalOrders++
		s.ByType[o.OrderType]++
		switch {
		case o.Status == enum.OrderStatusCancelled:
			s.CancelledOrders++
			continue
		case o.Status == enum.OrderStatusCompleted:
			s.CompletedOrders++
		case IsActive(o.Status):
			s.ActiveOrders++
		}
		s.TotalRevenue = s.TotalRevenue.Add(o.TotalAmount)
	}
	return s
}
