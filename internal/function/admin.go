package function

import (
	"context"
	"time"

	"bakery-be/internal/category"
	"bakery-be/internal/coupon"
	"bakery-be/internal/order"
	"bakery-be/internal/product"
	"bakery-be/internal/stats"
)

type adminListOrdersRequest struct {
	Status       *int   `json:"status"`
	DeliveryType string `json:"deliveryType" validate:"omitempty,oneof=pickup delivery"`
	From         string `json:"from"`
	To           string `json:"to"`
	UserID       string `json:"userId"`
	View         string `json:"view" validate:"omitempty,oneof=order delivery pickup"`
	pageRequest
}

type updateStatusRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  *int   `json:"status" validate:"required"`
}

type setProductStatusRequest struct {
	ID     string         `json:"id" validate:"required"`
	Status product.Status `json:"status" validate:"oneof=on off"`
}

type issueCouponRequest struct {
	UserID   string `json:"userId" validate:"required"`
	CouponID string `json:"couponId" validate:"required"`
}

type dayRequest struct {
	Date string `json:"date" validate:"required"`
}

type rangeRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

type yearRequest struct {
	Year int `json:"year" validate:"required"`
}

type rankingRequest struct {
	rangeRequest
	Limit int `json:"limit" validate:"gte=0"`
}

type StockResult struct {
	Stock int `json:"stock"`
}

// views picks how the admin screens label each order.
var views = map[string]func(*order.Order) order.View{
	"":         order.ViewFor,
	"order":    order.OrderView,
	"delivery": order.DeliveryView,
	"pickup":   order.PickupView,
}

func registerAdmin(reg *Registry, s Services) {
	registerAdminOrders(reg, s)
	registerAdminCatalog(reg, s)
	registerAdminStats(reg, s)
}

func registerAdminOrders(reg *Registry, s Services) {
	reg.Register("admin", "listOrders", Bind(func(ctx context.Context, in adminListOrdersRequest) ([]OrderView, error) {
		from, to, err := s.dayRange(in.From, in.To)
		if err != nil {
			return nil, err
		}
		filter := order.ListFilter{
			UserID:       in.UserID,
			Status:       statusFilter(in.Status),
			DeliveryType: order.DeliveryType(in.DeliveryType),
			From:         from,
			To:           to,
			Page:         in.Page,
			Limit:        in.Limit,
		}
		// The delivery and pickup boards only show their own orders.
		if in.View == "delivery" || in.View == "pickup" {
			filter.DeliveryType = order.DeliveryType(in.View)
		}

		list, err := s.Orders.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return presentAll(list, views[in.View]), nil
	}))

	reg.Register("admin", "orderDetail", Bind(func(ctx context.Context, in byOrderID) (OrderView, error) {
		o, err := s.Orders.AdminGet(ctx, in.OrderID)
		if err != nil {
			return OrderView{}, err
		}
		return present(o), nil
	}))

	reg.Register("admin", "updateStatus", Bind(func(ctx context.Context, in updateStatusRequest) (OK, error) {
		if err := s.Orders.UpdateStatus(ctx, caller(ctx), in.OrderID, order.Status(*in.Status)); err != nil {
			return OK{}, err
		}
		return done, nil
	}))

	reg.Register("admin", "cancelOrder", Bind(func(ctx context.Context, in cancelRequest) (OK, error) {
		if err := s.Orders.AdminCancel(ctx, caller(ctx), in.OrderID, in.Reason); err != nil {
			return OK{}, err
		}
		return done, nil
	}))

	reg.Register("admin", "startPacking", orderStep(s.Orders.StartPacking))
	reg.Register("admin", "finishPacking", orderStep(s.Orders.FinishPacking))
	reg.Register("admin", "dispatch", orderStep(s.Orders.Dispatch))
	reg.Register("admin", "complete", orderStep(s.Orders.Complete))
}

// orderStep adapts a kitchen or delivery step to an admin action.
func orderStep(step func(ctx context.Context, adminID, orderID string) error) Handler {
	return Bind(func(ctx context.Context, in byOrderID) (OK, error) {
		if err := step(ctx, caller(ctx), in.OrderID); err != nil {
			return OK{}, err
		}
		return done, nil
	})
}

func registerAdminCatalog(reg *Registry, s Services) {
	reg.Register("admin", "createProduct", Bind(func(ctx context.Context, in product.CreateInput) (*product.Product, error) {
		return s.Products.Create(ctx, in)
	}))

	reg.Register("admin", "updateProduct", Bind(func(ctx context.Context, in product.UpdateInput) (*product.Product, error) {
		return s.Products.Update(ctx, in)
	}))

	reg.Register("admin", "setProductStatus", Bind(func(ctx context.Context, in setProductStatusRequest) (OK, error) {
		if err := s.Products.SetStatus(ctx, in.ID, in.Status); err != nil {
			return OK{}, err
		}
		return done, nil
	}))

	reg.Register("admin", "deleteProduct", Bind(func(ctx context.Context, in byID) (OK, error) {
		if err := s.Products.Delete(ctx, in.ID); err != nil {
			return OK{}, err
		}
		return done, nil
	}))

	reg.Register("admin", "adjustStock", Bind(func(ctx context.Context, in product.AdjustStockInput) (StockResult, error) {
		after, err := s.Products.AdjustStock(ctx, in)
		return StockResult{Stock: after}, err
	}))

	reg.Register("admin", "createCategory", Bind(func(ctx context.Context, in category.CreateInput) (*category.Category, error) {
		return s.Categories.Create(ctx, in)
	}))

	reg.Register("admin", "updateCategory", Bind(func(ctx context.Context, in category.UpdateInput) (*category.Category, error) {
		return s.Categories.Update(ctx, in)
	}))

	reg.Register("admin", "deleteCategory", Bind(func(ctx context.Context, in byID) (OK, error) {
		if err := s.Categories.Delete(ctx, in.ID); err != nil {
			return OK{}, err
		}
		return done, nil
	}))

	reg.Register("admin", "createCoupon", Bind(func(ctx context.Context, in coupon.CreateTemplateInput) (*coupon.Coupon, error) {
		return s.Coupons.CreateTemplate(ctx, in)
	}))

	reg.Register("admin", "issueCoupon", Bind(func(ctx context.Context, in issueCouponRequest) (*coupon.UserCoupon, error) {
		return s.Coupons.Issue(ctx, in.UserID, in.CouponID)
	}))
}

func registerAdminStats(reg *Registry, s Services) {
	reg.Register("admin", "dashboard", Bind(func(ctx context.Context, _ Empty) (*stats.Dashboard, error) {
		return s.Stats.Dashboard(ctx, s.Now())
	}))

	reg.Register("admin", "salesByTimeslot", Bind(func(ctx context.Context, in dayRequest) ([]stats.Bucket, error) {
		day, err := s.parseDay(in.Date)
		if err != nil {
			return nil, err
		}
		return s.Stats.SalesByTimeslot(ctx, day)
	}))

	reg.Register("admin", "salesByDay", Bind(func(ctx context.Context, in rangeRequest) ([]stats.Bucket, error) {
		from, to, err := s.days(in)
		if err != nil {
			return nil, err
		}
		return s.Stats.SalesByDay(ctx, from, to)
	}))

	reg.Register("admin", "salesByMonth", Bind(func(ctx context.Context, in yearRequest) ([]stats.Bucket, error) {
		return s.Stats.SalesByMonth(ctx, in.Year)
	}))

	reg.Register("admin", "productRanking", Bind(func(ctx context.Context, in rankingRequest) ([]stats.RankItem, error) {
		from, to, err := s.days(in.rangeRequest)
		if err != nil {
			return nil, err
		}
		return s.Stats.ProductRanking(ctx, from, to, in.Limit)
	}))
}

func (s Services) days(in rangeRequest) (from, to time.Time, err error) {
	if from, err = s.parseDay(in.From); err != nil {
		return
	}
	to, err = s.parseDay(in.To)
	return
}
