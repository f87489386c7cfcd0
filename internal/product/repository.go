package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bakery-be/internal/logger"
	"bakery-be/internal/uow"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const RepoName uow.RepositoryName = "product"

type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error)
	// ListOnSale lists products on shelf, best sellers first. An empty
	// categoryID lists every category.
	ListOnSale(ctx context.Context, categoryID string, limit, offset int) ([]*Product, error)

	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	SetStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error

	// DeductStock atomically takes qty from the spec (or the product root when
	// specID is empty) and adds qty to the product's sales counter. It fails
	// with ErrInsufficientStock when the stock no longer covers qty.
	DeductStock(ctx context.Context, productID, specID string, qty int) error
	// RestoreStock is the inverse of DeductStock. A product or spec that has
	// since been deleted is skipped.
	RestoreStock(ctx context.Context, productID, specID string, qty int) error
	AdjustStock(ctx context.Context, productID, specID string, change int) (int, error)
	InsertStockRecord(ctx context.Context, rec *StockRecord) error
}

type repository struct {
	db uow.DBTX
}

func NewRepository(db uow.DBTX) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, description, image_url, price, stock, stock_warning, status, sales, category_id, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var (
		p          Product
		categoryID sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.Price, &p.Stock,
		&p.StockWarning, &p.Status, &p.Sales, &categoryID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.String
	}
	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	products, err := r.GetByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	p, ok := products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByIDs"),
		zap.Int("id_count", len(ids)),
	)

	res := make(map[string]*Product, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		res[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachSpecs(ctx, res); err != nil {
		log.Error("failed to load product specs", zap.Error(err))
		return nil, err
	}

	return res, nil
}

func (r *repository) attachSpecs(ctx context.Context, products map[string]*Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, name, price, stock
		FROM product_specs
		WHERE product_id = ANY($1)
		ORDER BY product_id, position
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s Spec
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Name, &s.Price, &s.Stock); err != nil {
			return err
		}
		if p, ok := products[s.ProductID]; ok {
			p.Specs = append(p.Specs, s)
		}
	}
	return rows.Err()
}

func (r *repository) ListOnSale(ctx context.Context, categoryID string, limit, offset int) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE status = 'on' AND ($1 = '' OR category_id = $1)
		ORDER BY sales DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`, categoryID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Product
	byID := map[string]*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachSpecs(ctx, byID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, name, description, image_url, price, stock,
			stock_warning, status, sales, category_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,$9,$10,$10)
	`, p.ID, p.Name, p.Description, p.ImageURL, p.Price, p.Stock, p.StockWarning, p.Status, p.CategoryID, now)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	for i := range p.Specs {
		s := &p.Specs[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		s.ProductID = p.ID
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO product_specs (id, product_id, name, price, stock, position)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, s.ID, p.ID, s.Name, s.Price, s.Stock, i)
		if err != nil {
			return fmt.Errorf("insert product spec: %w", err)
		}
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, image_url = $3, price = $4,
			stock_warning = $5, category_id = $6, updated_at = NOW()
		WHERE id = $7
	`, p.Name, p.Description, p.ImageURL, p.Price, p.StockWarning, p.CategoryID, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return expectOne(res, ErrProductNotFound)
}

func (r *repository) SetStatus(ctx context.Context, id string, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("update product status: %w", err)
	}
	return expectOne(res, ErrProductNotFound)
}

// Delete removes the product and its specs. Orders keep their own snapshots.
func (r *repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM product_specs WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("delete product specs: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectOne(res, ErrProductNotFound)
}

func (r *repository) DeductStock(ctx context.Context, productID, specID string, qty int) error {
	if specID == "" {
		res, err := r.db.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, sales = sales + $1, updated_at = NOW()
			WHERE id = $2 AND status = 'on' AND stock >= $1
		`, qty, productID)
		if err != nil {
			return fmt.Errorf("deduct product stock: %w", err)
		}
		return expectOne(res, ErrInsufficientStock)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE product_specs
		SET stock = stock - $1
		WHERE id = $2 AND product_id = $3 AND stock >= $1
	`, qty, specID, productID)
	if err != nil {
		return fmt.Errorf("deduct spec stock: %w", err)
	}
	if err := expectOne(res, ErrInsufficientStock); err != nil {
		return err
	}

	res, err = r.db.ExecContext(ctx, `
		UPDATE products
		SET sales = sales + $1, updated_at = NOW()
		WHERE id = $2 AND status = 'on'
	`, qty, productID)
	if err != nil {
		return fmt.Errorf("increase product sales: %w", err)
	}
	return expectOne(res, ErrProductOffShelf)
}

func (r *repository) RestoreStock(ctx context.Context, productID, specID string, qty int) error {
	if specID != "" {
		if _, err := r.db.ExecContext(ctx, `
			UPDATE product_specs
			SET stock = stock + $1
			WHERE id = $2 AND product_id = $3
		`, qty, specID, productID); err != nil {
			return fmt.Errorf("restore spec stock: %w", err)
		}

		if _, err := r.db.ExecContext(ctx, `
			UPDATE products
			SET sales = GREATEST(sales - $1, 0), updated_at = NOW()
			WHERE id = $2
		`, qty, productID); err != nil {
			return fmt.Errorf("restore product sales: %w", err)
		}
		return nil
	}

	if _, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $1, sales = GREATEST(sales - $1, 0), updated_at = NOW()
		WHERE id = $2
	`, qty, productID); err != nil {
		return fmt.Errorf("restore product stock: %w", err)
	}
	return nil
}

func (r *repository) AdjustStock(ctx context.Context, productID, specID string, change int) (int, error) {
	var (
		stock int
		err   error
	)
	if specID == "" {
		err = r.db.QueryRowContext(ctx, `
			UPDATE products
			SET stock = stock + $1, updated_at = NOW()
			WHERE id = $2 AND stock + $1 >= 0
			RETURNING stock
		`, change, productID).Scan(&stock)
	} else {
		err = r.db.QueryRowContext(ctx, `
			UPDATE product_specs
			SET stock = stock + $1
			WHERE id = $2 AND product_id = $3 AND stock + $1 >= 0
			RETURNING stock
		`, change, specID, productID).Scan(&stock)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientStock
	}
	if err != nil {
		return 0, fmt.Errorf("adjust stock: %w", err)
	}
	return stock, nil
}

func (r *repository) InsertStockRecord(ctx context.Context, rec *StockRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_records (
			id, product_id, spec_id, change, stock_after, reason, operator_id, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.ID, rec.ProductID, rec.SpecID, rec.Change, rec.StockAfter, rec.Reason, rec.OperatorID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert stock record: %w", err)
	}
	return nil
}

func expectOne(res sql.Result, notMatched error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notMatched
	}
	return nil
}
