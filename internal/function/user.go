package function

import (
	"context"

	"bakery-be/internal/address"
	"bakery-be/internal/coupon"
	"bakery-be/internal/user"
)

type couponsRequest struct {
	Status *int `json:"status" validate:"omitempty,oneof=0 1 2"`
}

func registerUser(reg *Registry, s Services) {
	reg.Register("user", "profile", Bind(func(ctx context.Context, _ Empty) (*user.User, error) {
		return s.Users.Profile(ctx, caller(ctx))
	}))

	reg.Register("user", "pointsHistory", Bind(func(ctx context.Context, in pageRequest) ([]*user.PointsRecord, error) {
		return s.Users.PointsHistory(ctx, caller(ctx), in.Page, in.Limit)
	}))

	reg.Register("user", "coupons", Bind(func(ctx context.Context, in couponsRequest) ([]*coupon.UserCoupon, error) {
		var status *coupon.UserCouponStatus
		if in.Status != nil {
			st := coupon.UserCouponStatus(*in.Status)
			status = &st
		}
		return s.Coupons.ListMine(ctx, caller(ctx), status)
	}))

	reg.Register("user", "addresses", Bind(func(ctx context.Context, _ Empty) ([]*address.Address, error) {
		return s.Addresses.List(ctx, caller(ctx))
	}))

	reg.Register("user", "addressDetail", Bind(func(ctx context.Context, in byID) (*address.Address, error) {
		return s.Addresses.Get(ctx, caller(ctx), in.ID)
	}))

	reg.Register("user", "addAddress", Bind(func(ctx context.Context, in address.CreateAddressInput) (*address.Address, error) {
		return s.Addresses.Create(ctx, caller(ctx), in)
	}))

	reg.Register("user", "deleteAddress", Bind(func(ctx context.Context, in byID) (OK, error) {
		if err := s.Addresses.Delete(ctx, caller(ctx), in.ID); err != nil {
			return OK{}, err
		}
		return done, nil
	}))
}
