package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"stockhub/internal/domain"
)

type StoreRepo struct{ q sqlx.ExtContext }

func NewStoreRepo(db *DB) *StoreRepo { return &StoreRepo{q: db.DB} }

func (r *StoreRepo) WithTx(tx *sqlx.Tx) *StoreRepo { return &StoreRepo{q: tx} }

const storeCols = `id, name, location, manager_name`

func (r *StoreRepo) List(ctx context.Context, limit, offset int) ([]domain.Store, int, error) {
	var total int
	if err := sqlx.GetContext(ctx, r.q, &total, `SELECT COUNT(*) FROM stores`); err != nil {
		return nil, 0, err
	}
	out := []domain.Store{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
		SELECT `+storeCols+` FROM stores
		ORDER BY id
		LIMIT ? OFFSET ?`, limit, offset)
	return out, total, err
}

func (r *StoreRepo) Get(ctx context.Context, id int64) (domain.Store, error) {
	var s domain.Store
	err := sqlx.GetContext(ctx, r.q, &s, `SELECT `+storeCols+` FROM stores WHERE id = ?`, id)
	return s, err
}

func (r *StoreRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM stores WHERE id = ?`, id)
	return n > 0, err
}

// Create inserts s and sets s.ID.
func (r *StoreRepo) Create(ctx context.Context, s *domain.Store) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO stores(name, location, manager_name) VALUES (?, ?, ?)
	`, s.Name, s.Location, s.ManagerName)
	if err != nil {
		return err
	}
	s.ID, err = res.LastInsertId()
	return err
}

func (r *StoreRepo) Update(ctx context.Context, s domain.Store) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE stores SET name = ?, location = ?, manager_name = ? WHERE id = ?
	`, s.Name, s.Location, s.ManagerName, s.ID)
	return err
}

// InUse reports whether inventory or movement rows reference the store.
func (r *StoreRepo) InUse(ctx context.Context, id int64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `
		SELECT (SELECT COUNT(*) FROM inventory WHERE store_id = ?)
		     + (SELECT COUNT(*) FROM movements WHERE source_store_id = ? OR target_store_id = ?)`,
		id, id, id)
	return n > 0, err
}

func (r *StoreRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, id)
	return err
}
