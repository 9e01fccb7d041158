package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockhub/internal/domain"
)

type ProductRepo struct{ q sqlx.ExtContext }

func NewProductRepo(db *DB) *ProductRepo { return &ProductRepo{q: db.DB} }

func (r *ProductRepo) WithTx(tx *sqlx.Tx) *ProductRepo { return &ProductRepo{q: tx} }

// ProductFilter narrows List. Nil pointers mean "no filter".
type ProductFilter struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// Stock keeps products held in some store with exactly this quantity.
	Stock  *int
	Limit  int
	Offset int
}

const productCols = `id, name, price, category, description, sku`

// List returns one page of matching products and the total match count.
func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.Product, int, error) {
	where := `1 = 1`
	args := []any{}
	if f.Category != "" {
		where += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		where += ` AND price >= ?`
		args = append(args, f.MinPrice.InexactFloat64())
	}
	if f.MaxPrice != nil {
		where += ` AND price <= ?`
		args = append(args, f.MaxPrice.InexactFloat64())
	}
	if f.Stock != nil {
		where += ` AND EXISTS (SELECT 1 FROM inventory i WHERE i.product_id = products.id AND i.qty = ?)`
		args = append(args, *f.Stock)
	}

	var total int
	if err := sqlx.GetContext(ctx, r.q, &total, `SELECT COUNT(*) FROM products WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
		SELECT `+productCols+`
		FROM products
		WHERE `+where+`
		ORDER BY id
		LIMIT ? OFFSET ?`, append(args, f.Limit, f.Offset)...)
	return out, total, err
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.q, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *ProductRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM products WHERE id = ?`, id)
	return n > 0, err
}

// Create inserts p and sets p.ID.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO products(name, price, category, description, sku)
		VALUES (?, ?, ?, ?, ?)
	`, p.Name, p.Price, p.Category, p.Description, p.SKU)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

// Update overwrites every mutable column of p.ID.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE products
		SET name = ?, price = ?, category = ?, description = ?, sku = ?
		WHERE id = ?
	`, p.Name, p.Price, p.Category, p.Description, p.SKU, p.ID)
	return err
}

// InUse reports whether inventory or movement rows reference the product.
func (r *ProductRepo) InUse(ctx context.Context, id int64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `
		SELECT (SELECT COUNT(*) FROM inventory WHERE product_id = ?)
		     + (SELECT COUNT(*) FROM movements WHERE product_id = ?)`, id, id)
	return n > 0, err
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}
