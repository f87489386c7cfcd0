package stats

import (
	"time"

	"bakery-be/internal/order"

	"github.com/shopspring/decimal"
)

// soldStatuses are the statuses that count as revenue. Unpaid, cancelled and
// refunded orders are excluded.
var soldStatuses = []order.Status{
	order.StatusPaid,
	order.StatusOfflinePay,
	order.StatusPreparing,
	order.StatusDelivering,
	order.StatusCompleted,
}

// pendingStatuses are the queues the back office works through.
var pendingStatuses = []order.Status{
	order.StatusPendingPay,
	order.StatusOfflinePay,
	order.StatusPaid,
	order.StatusPreparing,
	order.StatusDelivering,
}

type Sales struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

func (s *Sales) add(amount decimal.Decimal) {
	s.Amount = s.Amount.Add(amount)
	s.Count++
}

type Dashboard struct {
	Today        Sales          `json:"today"`
	Week         Sales          `json:"week"`
	Month        Sales          `json:"month"`
	Year         Sales          `json:"year"`
	StockWarning int            `json:"stockWarning"`
	Pending      map[string]int `json:"pending"`
}

// Bucket is one slot of a time series.
type Bucket struct {
	Label string `json:"label"`
	Sales
}

// SoldOrder is the slice of an order the reports bucket on.
type SoldOrder struct {
	CreatedAt time.Time
	PayAmount decimal.Decimal
}

// SoldItem is one order line inside a reporting range.
type SoldItem struct {
	ProductID string
	Name      string
	Quantity  int
	Subtotal  decimal.Decimal
}

type RankItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}
