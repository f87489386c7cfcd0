// Package producttest provides an in-memory product repository for tests of
// packages that sell products.
package producttest

import (
	"context"
	"sync"

	"bakery-be/internal/product"
)

type Fake struct {
	mu       sync.Mutex
	Products map[string]*product.Product
	Records  []*product.StockRecord
}

func New(products ...*product.Product) *Fake {
	f := &Fake{Products: map[string]*product.Product{}}
	for _, p := range products {
		f.Products[p.ID] = p
	}
	return f
}

func clone(p *product.Product) *product.Product {
	cp := *p
	cp.Specs = append([]product.Spec(nil), p.Specs...)
	return &cp
}

func (f *Fake) GetByID(_ context.Context, id string) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return clone(p), nil
}

func (f *Fake) GetByIDs(_ context.Context, ids []string) (map[string]*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := map[string]*product.Product{}
	for _, id := range ids {
		if p, ok := f.Products[id]; ok {
			res[id] = clone(p)
		}
	}
	return res, nil
}

func (f *Fake) ListOnSale(_ context.Context, categoryID string, _, _ int) ([]*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*product.Product
	for _, p := range f.Products {
		if categoryID != "" && (p.CategoryID == nil || *p.CategoryID != categoryID) {
			continue
		}
		if p.Status == product.StatusOn {
			list = append(list, clone(p))
		}
	}
	return list, nil
}

func (f *Fake) Create(_ context.Context, p *product.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Products[p.ID] = clone(p)
	return nil
}

func (f *Fake) Update(_ context.Context, p *product.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Products[p.ID]; !ok {
		return product.ErrProductNotFound
	}
	f.Products[p.ID] = clone(p)
	return nil
}

func (f *Fake) SetStatus(_ context.Context, id string, status product.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	p.Status = status
	return nil
}

func (f *Fake) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Products[id]; !ok {
		return product.ErrProductNotFound
	}
	delete(f.Products, id)
	return nil
}

func (f *Fake) DeductStock(_ context.Context, productID, specID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Products[productID]
	if !ok || p.Status != product.StatusOn {
		return product.ErrProductOffShelf
	}
	if specID == "" {
		if p.Stock < qty {
			return product.ErrInsufficientStock
		}
		p.Stock -= qty
	} else {
		s := p.FindSpec(specID)
		if s == nil || s.Stock < qty {
			return product.ErrInsufficientStock
		}
		s.Stock -= qty
	}
	p.Sales += qty
	return nil
}

func (f *Fake) RestoreStock(_ context.Context, productID, specID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Products[productID]
	if !ok {
		return nil
	}
	if specID == "" {
		p.Stock += qty
	} else if s := p.FindSpec(specID); s != nil {
		s.Stock += qty
	}
	p.Sales = max(p.Sales-qty, 0)
	return nil
}

func (f *Fake) AdjustStock(_ context.Context, productID, specID string, change int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Products[productID]
	if !ok {
		return 0, product.ErrProductNotFound
	}
	stock := &p.Stock
	if specID != "" {
		s := p.FindSpec(specID)
		if s == nil {
			return 0, product.ErrSpecNotFound
		}
		stock = &s.Stock
	}
	if *stock+change < 0 {
		return 0, product.ErrInsufficientStock
	}
	*stock += change
	return *stock, nil
}

func (f *Fake) InsertStockRecord(_ context.Context, rec *product.StockRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Records = append(f.Records, rec)
	return nil
}

// Stock returns the current stock of the product root or of specID.
func (f *Fake) Stock(productID, specID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.Products[productID]
	if specID == "" {
		return p.Stock
	}
	return p.FindSpec(specID).Stock
}
