package order

// View is how one back-office screen presents an order.
type View struct {
	Stage string `json:"stage"`
	Label string `json:"label"`
}

var orderViews = map[Status]View{
	StatusPendingPay: {"pending_pay", "Awaiting payment"},
	StatusOfflinePay: {"offline_pay", "Pay offline"},
	StatusPaid:       {"paid", "Paid"},
	StatusPreparing:  {"preparing", "Preparing"},
	StatusDelivering: {"delivering", "Delivering"},
	StatusCompleted:  {"completed", "Completed"},
	StatusCancelled:  {"cancelled", "Cancelled"},
	StatusRefunding:  {"refunding", "Refunding"},
	StatusRefunded:   {"refunded", "Refunded"},
}

var deliveryViews = map[Status]View{
	StatusPendingPay: {"unpaid", "Awaiting payment"},
	StatusOfflinePay: {"to_pack", "Waiting to pack (pay on delivery)"},
	StatusPaid:       {"to_pack", "Waiting to pack"},
	StatusDelivering: {"delivering", "Out for delivery"},
	StatusCompleted:  {"delivered", "Delivered"},
	StatusCancelled:  {"cancelled", "Cancelled"},
	StatusRefunding:  {"refunding", "Refunding"},
	StatusRefunded:   {"refunded", "Refunded"},
}

var pickupViews = map[Status]View{
	StatusPendingPay: {"unpaid", "Awaiting payment"},
	StatusOfflinePay: {"to_prepare", "Waiting to prepare (pay at pickup)"},
	StatusPaid:       {"to_prepare", "Waiting to prepare"},
	StatusDelivering: {"ready", "Ready for pickup"},
	StatusCompleted:  {"picked_up", "Picked up"},
	StatusCancelled:  {"cancelled", "Cancelled"},
	StatusRefunding:  {"refunding", "Refunding"},
	StatusRefunded:   {"refunded", "Refunded"},
}

var unknownView = View{"unknown", "Unknown"}

func lookup(table map[Status]View, s Status) View {
	if v, ok := table[s]; ok {
		return v
	}
	return unknownView
}

// OrderView is the generic order-management label.
func OrderView(o *Order) View {
	return lookup(orderViews, o.Status)
}

// DeliveryView splits Preparing into to_pack, packing and packed using the
// pack timestamps, which the status alone does not carry.
func DeliveryView(o *Order) View {
	if o.Status != StatusPreparing {
		return lookup(deliveryViews, o.Status)
	}
	switch {
	case o.PackEndTime != nil:
		return View{"packed", "Packed, awaiting dispatch"}
	case o.PackStartTime != nil:
		return View{"packing", "Packing"}
	default:
		return View{"to_pack", "Waiting to pack"}
	}
}

// PickupView reports a finished packing as ready for pickup.
func PickupView(o *Order) View {
	if o.Status != StatusPreparing {
		return lookup(pickupViews, o.Status)
	}
	if o.PackEndTime != nil {
		return View{"ready", "Ready for pickup"}
	}
	return View{"preparing", "Being prepared"}
}

// ViewFor picks the delivery or pickup view by the order's delivery type.
func ViewFor(o *Order) View {
	if o.DeliveryType == DeliveryDelivery {
		return DeliveryView(o)
	}
	return PickupView(o)
}
