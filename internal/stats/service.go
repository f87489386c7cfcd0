package stats

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"bakery-be/internal/logger"
	"bakery-be/internal/uow"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxRangeDays       = 366
	defaultRankingSize = 10
	maxRankingSize     = 100
)

type Service interface {
	Dashboard(ctx context.Context, now time.Time) (*Dashboard, error)
	SalesByTimeslot(ctx context.Context, day time.Time) ([]Bucket, error)
	SalesByDay(ctx context.Context, from, to time.Time) ([]Bucket, error)
	SalesByMonth(ctx context.Context, year int) ([]Bucket, error)
	ProductRanking(ctx context.Context, from, to time.Time, limit int) ([]RankItem, error)
}

type service struct {
	uow uow.UOW
	loc *time.Location
}

// NewService reports in loc. A nil loc means time.Local.
func NewService(u uow.UOW, loc *time.Location) Service {
	if loc == nil {
		loc = time.Local
	}
	return &service{uow: u, loc: loc}
}

func (s *service) repo() (Repository, error) {
	return uow.GetRepositoryAs[Repository](s.uow, RepoName)
}

func (s *service) startOfDay(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// startOfWeek is the Monday of t's week.
func (s *service) startOfWeek(t time.Time) time.Time {
	day := s.startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func (s *service) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	repo, err := s.repo()
	if err != nil {
		return nil, err
	}

	today := s.startOfDay(now)
	end := today.AddDate(0, 0, 1)

	d := &Dashboard{Pending: map[string]int{}}
	ranges := []struct {
		dst  *Sales
		from time.Time
	}{
		{&d.Today, today},
		{&d.Week, s.startOfWeek(now)},
		{&d.Month, time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)},
		{&d.Year, time.Date(today.Year(), 1, 1, 0, 0, 0, 0, s.loc)},
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, r := range ranges {
		eg.Go(func() error {
			sales, err := repo.SalesBetween(ctx, r.from, end)
			if err != nil {
				return err
			}
			*r.dst = sales
			return nil
		})
	}
	eg.Go(func() error {
		n, err := repo.StockWarningCount(ctx)
		d.StockWarning = n
		return err
	})
	eg.Go(func() error {
		counts, err := repo.CountByStatus(ctx, pendingStatuses)
		if err != nil {
			return err
		}
		for _, st := range pendingStatuses {
			d.Pending[st.String()] = counts[st]
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		logger.FromCtx(ctx).Error("failed to build dashboard", zap.Error(err))
		return nil, err
	}
	return d, nil
}

// SalesByTimeslot buckets one day's sales by hour, 24 buckets.
func (s *service) SalesByTimeslot(ctx context.Context, day time.Time) ([]Bucket, error) {
	repo, err := s.repo()
	if err != nil {
		return nil, err
	}

	from := s.startOfDay(day)
	orders, err := repo.SoldOrders(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	buckets := make([]Bucket, 24)
	for h := range buckets {
		buckets[h].Label = fmt.Sprintf("%02d:00", h)
	}
	for _, o := range orders {
		buckets[o.CreatedAt.In(s.loc).Hour()].add(o.PayAmount)
	}
	return buckets, nil
}

// SalesByDay returns one bucket per calendar day from..to inclusive.
func (s *service) SalesByDay(ctx context.Context, from, to time.Time) ([]Bucket, error) {
	from, to = s.startOfDay(from), s.startOfDay(to)
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	days := int(to.Sub(from).Hours()/24+0.5) + 1
	if days > maxRangeDays {
		return nil, ErrRangeTooWide
	}

	repo, err := s.repo()
	if err != nil {
		return nil, err
	}
	orders, err := repo.SoldOrders(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	const layout = "2006-01-02"
	buckets := make([]Bucket, days)
	index := make(map[string]int, days)
	for i := range buckets {
		label := from.AddDate(0, 0, i).Format(layout)
		buckets[i].Label = label
		index[label] = i
	}
	for _, o := range orders {
		if i, ok := index[o.CreatedAt.In(s.loc).Format(layout)]; ok {
			buckets[i].add(o.PayAmount)
		}
	}
	return buckets, nil
}

// SalesByMonth returns 12 buckets for year.
func (s *service) SalesByMonth(ctx context.Context, year int) ([]Bucket, error) {
	if year < 2000 || year > 9999 {
		return nil, ErrInvalidYear
	}

	repo, err := s.repo()
	if err != nil {
		return nil, err
	}
	from := time.Date(year, 1, 1, 0, 0, 0, 0, s.loc)
	orders, err := repo.SoldOrders(ctx, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	buckets := make([]Bucket, 12)
	for m := range buckets {
		buckets[m].Label = fmt.Sprintf("%d-%02d", year, m+1)
	}
	for _, o := range orders {
		buckets[o.CreatedAt.In(s.loc).Month()-1].add(o.PayAmount)
	}
	return buckets, nil
}

// ProductRanking orders products by quantity sold between from and to, both
// days inclusive.
func (s *service) ProductRanking(ctx context.Context, from, to time.Time, limit int) ([]RankItem, error) {
	from, to = s.startOfDay(from), s.startOfDay(to)
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	if limit <= 0 {
		limit = defaultRankingSize
	}
	limit = min(limit, maxRankingSize)

	repo, err := s.repo()
	if err != nil {
		return nil, err
	}
	items, err := repo.SoldItems(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	byProduct := map[string]*RankItem{}
	for _, it := range items {
		r, ok := byProduct[it.ProductID]
		if !ok {
			r = &RankItem{ProductID: it.ProductID, Name: it.Name}
			byProduct[it.ProductID] = r
		}
		r.Quantity += it.Quantity
		r.Amount = r.Amount.Add(it.Subtotal)
	}

	ranking := make([]RankItem, 0, len(byProduct))
	for _, r := range byProduct {
		ranking = append(ranking, *r)
	}
	slices.SortFunc(ranking, func(a, b RankItem) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})

	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}
