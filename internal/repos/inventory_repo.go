package repos

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockhub/internal/domain"
)

// ErrShortStock is returned by Debit when the row is missing or holds less
// than the requested amount.
var ErrShortStock = errors.New("insufficient stock")

type InventoryRepo struct {
	q sqlx.ExtContext
	d Dialect
}

func NewInventoryRepo(db *DB) *InventoryRepo { return &InventoryRepo{q: db.DB, d: db.Dialect} }

// WithTx returns a copy of the repo bound to tx.
func (r *InventoryRepo) WithTx(tx *sqlx.Tx) *InventoryRepo { return &InventoryRepo{q: tx, d: r.d} }

const inventoryCols = `id, store_id, product_id, qty, min_stock`

// Get returns the record for (storeID, productID). If no row exists, it
// returns sql.ErrNoRows from sqlx.Get.
func (r *InventoryRepo) Get(ctx context.Context, storeID, productID int64) (domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	err := sqlx.GetContext(ctx, r.q, &rec, `
		SELECT `+inventoryCols+` FROM inventory
		WHERE store_id = ? AND product_id = ?
	`, storeID, productID)
	return rec, err
}

// GetForUpdate is Get with a row lock where the engine supports one. Only
// meaningful on a repo bound to a transaction.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, storeID, productID int64) (domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	err := sqlx.GetContext(ctx, r.q, &rec, `
		SELECT `+inventoryCols+` FROM inventory
		WHERE store_id = ? AND product_id = ?`+r.d.LockSuffix,
		storeID, productID)
	return rec, err
}

// Debit atomically subtracts "by" units if enough stock exists.
// Returns ErrShortStock if there isn't sufficient stock.
func (r *InventoryRepo) Debit(ctx context.Context, storeID, productID int64, by int) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE inventory
		SET qty = qty - ?
		WHERE store_id = ? AND product_id = ? AND qty >= ?
	`, by, storeID, productID, by)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrShortStock
	}
	return nil
}

// Credit adds "by" units, creating the record with min_stock 0 if needed.
func (r *InventoryRepo) Credit(ctx context.Context, storeID, productID int64, by int) error {
	_, err := r.q.ExecContext(ctx, r.d.UpsertCredit, storeID, productID, by)
	return err
}

// SetMinStock updates only the threshold. ok is false when the pair has no row.
func (r *InventoryRepo) SetMinStock(ctx context.Context, storeID, productID int64, minStock int) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE inventory SET min_stock = ?
		WHERE store_id = ? AND product_id = ?
	`, minStock, storeID, productID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// MySQL reports 0 affected rows when the value is unchanged, so fall back to a lookup
	if n == 0 {
		var one int
		err := sqlx.GetContext(ctx, r.q, &one, `
			SELECT 1 FROM inventory WHERE store_id = ? AND product_id = ?`, storeID, productID)
		if err != nil {
			return false, ignoreNoRows(err)
		}
	}
	return true, nil
}

type inventoryRow struct {
	domain.InventoryRecord
	StoreName    string          `db:"store_name"`
	PName        string          `db:"p_name"`
	PPrice       decimal.Decimal `db:"p_price"`
	PCategory    string          `db:"p_category"`
	PDescription string          `db:"p_description"`
	PSKU         string          `db:"p_sku"`
}

func (row inventoryRow) view() domain.InventoryView {
	return domain.InventoryView{
		InventoryRecord: row.InventoryRecord,
		StoreName:       row.StoreName,
		Product: domain.Product{
			ID:          row.ProductID,
			Name:        row.PName,
			Price:       row.PPrice,
			Category:    row.PCategory,
			Description: row.PDescription,
			SKU:         row.PSKU,
		},
	}
}

const inventoryViewSelect = `
	SELECT i.id, i.store_id, i.product_id, i.qty, i.min_stock,
	       s.name AS store_name,
	       p.name AS p_name, p.price AS p_price, p.category AS p_category,
	       p.description AS p_description, p.sku AS p_sku
	FROM inventory i
	JOIN products p ON p.id = i.product_id
	JOIN stores s ON s.id = i.store_id`

func (r *InventoryRepo) selectViews(ctx context.Context, query string, args ...any) ([]domain.InventoryView, error) {
	var rows []inventoryRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]domain.InventoryView, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.view())
	}
	return out, nil
}

// ListByStore returns every record a store holds, with product data.
func (r *InventoryRepo) ListByStore(ctx context.Context, storeID int64) ([]domain.InventoryView, error) {
	return r.selectViews(ctx, inventoryViewSelect+`
		WHERE i.store_id = ?
		ORDER BY i.product_id`, storeID)
}

// ListLow returns records whose quantity is at or below min_stock.
func (r *InventoryRepo) ListLow(ctx context.Context) ([]domain.InventoryView, error) {
	return r.selectViews(ctx, inventoryViewSelect+`
		WHERE i.qty <= i.min_stock
		ORDER BY i.store_id, i.product_id`)
}
