package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"stockhub/internal/domain"
)

type MovementRepo struct{ q sqlx.ExtContext }

func NewMovementRepo(db *DB) *MovementRepo { return &MovementRepo{q: db.DB} }

func (r *MovementRepo) WithTx(tx *sqlx.Tx) *MovementRepo { return &MovementRepo{q: tx} }

// Append inserts m and sets m.ID. Movements are never updated or deleted.
func (r *MovementRepo) Append(ctx context.Context, m *domain.Movement) error {
	res, err := r.q.ExecContext(ctx, `
	  INSERT INTO movements
	    (product_id, source_store_id, target_store_id, qty, ts, type, reference)
	  VALUES
	    (?,          ?,               ?,               ?,   ?,  ?,    ?)
	`, m.ProductID, m.SourceStoreID, m.TargetStoreID, m.Qty, m.Timestamp, string(m.Type), m.Reference)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

// MovementFilter narrows List. Zero values mean "any".
type MovementFilter struct {
	// StoreID matches either side of a movement.
	StoreID   int64
	ProductID int64
	Type      domain.MovementType
	Limit     int
	Offset    int
}

// List returns the newest matching movements first, plus the total count.
func (r *MovementRepo) List(ctx context.Context, f MovementFilter) ([]domain.Movement, int, error) {
	where := `1 = 1`
	args := []any{}
	if f.StoreID != 0 {
		where += ` AND (source_store_id = ? OR target_store_id = ?)`
		args = append(args, f.StoreID, f.StoreID)
	}
	if f.ProductID != 0 {
		where += ` AND product_id = ?`
		args = append(args, f.ProductID)
	}
	if f.Type != "" {
		where += ` AND type = ?`
		args = append(args, string(f.Type))
	}

	var total int
	if err := sqlx.GetContext(ctx, r.q, &total, `SELECT COUNT(*) FROM movements WHERE `+where, args...); err != nil {
		return nil, 0, err
	}
	if f.Limit <= 0 {
		f.Limit = 100
	}
	out := []domain.Movement{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
		SELECT id, product_id, source_store_id, target_store_id, qty, ts, type, reference
		FROM movements
		WHERE `+where+`
		ORDER BY ts DESC, id DESC
		LIMIT ? OFFSET ?`, append(args, f.Limit, f.Offset)...)
	return out, total, err
}
