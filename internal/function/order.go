package function

import (
	"context"

	"bakery-be/internal/order"
)

// OrderView is an order with the stage label of its fulfilment screen.
type OrderView struct {
	*order.Order
	View order.View `json:"view"`
}

func present(o *order.Order) OrderView {
	return OrderView{Order: o, View: order.ViewFor(o)}
}

func presentAll(list []*order.Order, view func(*order.Order) order.View) []OrderView {
	res := make([]OrderView, 0, len(list))
	for _, o := range list {
		res = append(res, OrderView{Order: o, View: view(o)})
	}
	return res
}

type cancelRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Reason  string `json:"reason" validate:"max=200"`
}

type listOrdersRequest struct {
	Status *int `json:"status"`
	pageRequest
}

func statusFilter(v *int) *order.Status {
	if v == nil {
		return nil
	}
	s := order.Status(*v)
	return &s
}

func registerOrder(reg *Registry, s Services) {
	reg.Register("order", "create", Bind(func(ctx context.Context, in order.CreateInput) (*order.CreateResult, error) {
		in.UserID = caller(ctx)
		return s.Orders.Create(ctx, in)
	}))

	reg.Register("order", "cancel", Bind(func(ctx context.Context, in cancelRequest) (OK, error) {
		if err := s.Orders.Cancel(ctx, caller(ctx), in.OrderID, in.Reason); err != nil {
			return OK{}, err
		}
		return done, nil
	}))

	reg.Register("order", "payWithPoints", Bind(func(ctx context.Context, in byOrderID) (*order.PayResult, error) {
		return s.Orders.PayWithPoints(ctx, caller(ctx), in.OrderID)
	}))

	reg.Register("order", "payOffline", Bind(func(ctx context.Context, in byOrderID) (OK, error) {
		if err := s.Orders.PayOffline(ctx, caller(ctx), in.OrderID); err != nil {
			return OK{}, err
		}
		return done, nil
	}))

	reg.Register("order", "detail", Bind(func(ctx context.Context, in byOrderID) (OrderView, error) {
		o, err := s.Orders.Get(ctx, caller(ctx), in.OrderID)
		if err != nil {
			return OrderView{}, err
		}
		return present(o), nil
	}))

	reg.Register("order", "list", Bind(func(ctx context.Context, in listOrdersRequest) ([]OrderView, error) {
		list, err := s.Orders.List(ctx, order.ListFilter{
			UserID: caller(ctx),
			Status: statusFilter(in.Status),
			Page:   in.Page,
			Limit:  in.Limit,
		})
		if err != nil {
			return nil, err
		}
		return presentAll(list, order.ViewFor), nil
	}))
}
