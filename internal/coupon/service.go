package coupon

import (
	"context"
	"strings"
	"time"

	"bakery-be/internal/audit"
	"bakery-be/internal/logger"
	"bakery-be/internal/uow"
	"bakery-be/internal/utils"

	"github.com/ecodeclub/ekit/slice"
	"go.uber.org/zap"
)

type Service interface {
	CreateTemplate(ctx context.Context, input CreateTemplateInput) (*Coupon, error)
	Issue(ctx context.Context, userID, couponID string) (*UserCoupon, error)
	ListMine(ctx context.Context, userID string, status *UserCouponStatus) ([]*UserCoupon, error)
}

type service struct {
	uow uow.UOW
	now func() time.Time
}

func NewService(u uow.UOW) Service {
	return &service{uow: u, now: time.Now}
}

func (s *service) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*Coupon, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidName
	}
	if !input.Type.Valid() {
		return nil, ErrInvalidType
	}
	if !input.Value.IsPositive() || (input.Type == TypePercent && input.Value.GreaterThan(ten)) {
		return nil, ErrInvalidValue
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, ErrInvalidWindow
	}

	c := &Coupon{
		Name:      strings.TrimSpace(input.Name),
		Type:      input.Type,
		Value:     input.Value,
		MinSpend:  input.MinSpend,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
	}

	adminID, _ := utils.GetUserIDFromContext(ctx)
	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}
		if err := repo.CreateTemplate(ctx, c); err != nil {
			return err
		}
		return audit.Record(ctx, tx, &audit.Log{
			AdminID:  adminID,
			Action:   audit.ActionCreateCoupon,
			TargetID: c.ID,
			Detail:   map[string]any{"name": c.Name, "type": int(c.Type), "value": c.Value.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Issue(ctx context.Context, userID, couponID string) (*UserCoupon, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Issue"),
		zap.String("user_id", userID),
		zap.String("coupon_id", couponID),
	)

	adminID, _ := utils.GetUserIDFromContext(ctx)

	uc := &UserCoupon{UserID: userID, CouponID: couponID}
	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}

		c, err := repo.GetTemplate(ctx, couponID)
		if err != nil {
			return err
		}
		if s.now().After(c.EndTime) {
			return ErrCouponEnded
		}
		if err := repo.Issue(ctx, uc); err != nil {
			return err
		}
		uc.Coupon = c

		return audit.Record(ctx, tx, &audit.Log{
			AdminID:  adminID,
			Action:   audit.ActionIssueCoupon,
			TargetID: uc.ID,
			Detail:   map[string]any{"userId": userID, "couponId": couponID},
		})
	})
	if err != nil {
		log.Warn("failed to issue coupon", zap.Error(err))
		return nil, err
	}

	log.Info("coupon issued", zap.String("user_coupon_id", uc.ID))
	return uc, nil
}

// ListMine returns the user's coupons. Unused coupons whose window has passed
// are reported as expired.
func (s *service) ListMine(ctx context.Context, userID string, status *UserCouponStatus) ([]*UserCoupon, error) {
	repo, err := uow.GetRepositoryAs[Repository](s.uow, RepoName)
	if err != nil {
		return nil, err
	}

	list, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	list = slice.Map(list, func(_ int, uc *UserCoupon) *UserCoupon {
		if uc.Status == StatusUnused && uc.Coupon != nil && now.After(uc.Coupon.EndTime) {
			uc.Status = StatusExpired
		}
		return uc
	})

	if status == nil {
		return list, nil
	}
	return slice.FindAll(list, func(uc *UserCoupon) bool {
		return uc.Status == *status
	}), nil
}
