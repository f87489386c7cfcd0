package order

import "strconv"

// Status is the single source of truth of an order's lifecycle.
type Status int

const (
	StatusRefunded   Status = -3
	StatusRefunding  Status = -2
	StatusCancelled  Status = -1
	StatusPendingPay Status = 0
	StatusPaid       Status = 1
	StatusPreparing  Status = 2
	StatusDelivering Status = 3
	StatusCompleted  Status = 4
	StatusOfflinePay Status = 5
)

var statusNames = map[Status]string{
	StatusRefunded:   "refunded",
	StatusRefunding:  "refunding",
	StatusCancelled:  "cancelled",
	StatusPendingPay: "pending_pay",
	StatusPaid:       "paid",
	StatusPreparing:  "preparing",
	StatusDelivering: "delivering",
	StatusCompleted:  "completed",
	StatusOfflinePay: "offline_pay",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// transitions lists every allowed move. Statuses without an entry are
// terminal.
var transitions = map[Status][]Status{
	StatusPendingPay: {StatusPaid, StatusOfflinePay, StatusCancelled},
	StatusOfflinePay: {StatusPaid, StatusPreparing, StatusCancelled},
	StatusPaid:       {StatusPreparing, StatusCancelled, StatusRefunding},
	StatusPreparing:  {StatusDelivering, StatusCompleted, StatusCancelled, StatusRefunding},
	StatusDelivering: {StatusCompleted, StatusCancelled, StatusRefunding},
	StatusCompleted:  {StatusRefunding},
	StatusRefunding:  {StatusRefunded},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// UserCancellable reports whether the customer may cancel on their own.
func (s Status) UserCancellable() bool {
	return s == StatusPendingPay || s == StatusPaid
}

// AdminCancellable reports whether the back office may cancel.
func (s Status) AdminCancellable() bool {
	return CanTransition(s, StatusCancelled)
}

// InKitchen reports whether the bakery has started working on the order.
func (s Status) InKitchen() bool {
	return s == StatusPreparing || s == StatusDelivering
}
