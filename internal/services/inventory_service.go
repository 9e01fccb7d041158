package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockhub/internal/domain"
	"stockhub/internal/repos"
)

type InventoryService struct {
	DB       *repos.DB
	Inv      *repos.InventoryRepo
	Stores   *repos.StoreRepo
	Products *repos.ProductRepo
	Moves    *repos.MovementRepo

	Alerts AlertPublisher
	Now    func() time.Time
}

func NewInventoryService(db *repos.DB, inv *repos.InventoryRepo, stores *repos.StoreRepo, products *repos.ProductRepo, moves *repos.MovementRepo) *InventoryService {
	return &InventoryService{
		DB: db, Inv: inv, Stores: stores, Products: products, Moves: moves,
		Alerts: nopPublisher{}, Now: time.Now,
	}
}

// StockReceipt is the result of a receive or issue.
type StockReceipt struct {
	Message  string          `json:"message"`
	Movement domain.Movement `json:"movement"`
	Qty      int             `json:"qty"`
}

// StoreInventory lists a store's records. An empty result is NotFound.
func (s *InventoryService) StoreInventory(ctx context.Context, storeID int64) ([]domain.InventoryView, error) {
	rows, err := s.Inv.ListByStore(ctx, storeID)
	if err != nil {
		return nil, persistence("list store inventory", err)
	}
	if len(rows) == 0 {
		return nil, notFound(MsgNoStoreInventory)
	}
	return rows, nil
}

// SetMinStock changes the threshold of an existing (store, product) record.
// It never creates a record and never touches qty.
func (s *InventoryService) SetMinStock(ctx context.Context, storeID, productID int64, minStock int) error {
	if minStock < 0 {
		return invalid(MsgNegativeMinStock)
	}
	if minStock > MaxQuantity {
		return invalid(MsgMinStockTooLarge)
	}
	err := s.DB.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.mustExist(ctx, tx, storeID, productID); err != nil {
			return err
		}
		ok, err := s.Inv.WithTx(tx).SetMinStock(ctx, storeID, productID, minStock)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(MsgPairNotFound)
		}
		return nil
	})
	return persistence("set min stock", err)
}

func (s *InventoryService) mustExist(ctx context.Context, tx *sqlx.Tx, storeID, productID int64) error {
	ok, err := s.Stores.WithTx(tx).Exists(ctx, storeID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(MsgStoreNotFound)
	}
	ok, err = s.Products.WithTx(tx).Exists(ctx, productID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(MsgProductNotFound)
	}
	return nil
}

// Receive books qty units into a store (an IN movement), creating the record
// if the store did not hold the product yet.
func (s *InventoryService) Receive(ctx context.Context, storeID, productID int64, qty int) (StockReceipt, error) {
	if qty <= 0 {
		return StockReceipt{}, invalid(MsgInvalidQuantity)
	}
	if qty > MaxQuantity {
		return StockReceipt{}, invalid(MsgQuantityTooLarge)
	}
	var out StockReceipt
	err := s.DB.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.mustExist(ctx, tx, storeID, productID); err != nil {
			return err
		}
		inv := s.Inv.WithTx(tx)
		cur, err := inv.Get(ctx, storeID, productID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if cur.Qty > MaxQuantity-qty {
			return invalid(MsgStockLimit)
		}
		if err := inv.Credit(ctx, storeID, productID, qty); err != nil {
			return err
		}
		target := storeID
		m := domain.Movement{
			ProductID:     productID,
			TargetStoreID: &target,
			Qty:           qty,
			Timestamp:     s.Now().UTC(),
			Type:          domain.MovementIn,
			Reference:     uuid.NewString(),
		}
		if err := s.Moves.WithTx(tx).Append(ctx, &m); err != nil {
			return err
		}
		rec, err := inv.Get(ctx, storeID, productID)
		if err != nil {
			return err
		}
		out = StockReceipt{Message: "Stock received.", Movement: m, Qty: rec.Qty}
		return nil
	})
	if err != nil {
		return StockReceipt{}, persistence("receive stock", err)
	}
	return out, nil
}

// Issue books qty units out of a store (an OUT movement).
func (s *InventoryService) Issue(ctx context.Context, storeID, productID int64, qty int) (StockReceipt, error) {
	if qty <= 0 {
		return StockReceipt{}, invalid(MsgInvalidQuantity)
	}
	if qty > MaxQuantity {
		return StockReceipt{}, invalid(MsgQuantityTooLarge)
	}
	var (
		out StockReceipt
		rec domain.InventoryRecord
	)
	err := s.DB.InTx(ctx, func(tx *sqlx.Tx) error {
		inv := s.Inv.WithTx(tx)
		var err error
		rec, err = inv.GetForUpdate(ctx, storeID, productID)
		if errors.Is(err, sql.ErrNoRows) {
			return insufficient(MsgInsufficientStore)
		}
		if err != nil {
			return err
		}
		if err := inv.Debit(ctx, storeID, productID, qty); err != nil {
			if errors.Is(err, repos.ErrShortStock) {
				return insufficient(MsgInsufficientStore)
			}
			return err
		}
		source := storeID
		m := domain.Movement{
			ProductID:     productID,
			SourceStoreID: &source,
			Qty:           qty,
			Timestamp:     s.Now().UTC(),
			Type:          domain.MovementOut,
			Reference:     uuid.NewString(),
		}
		if err := s.Moves.WithTx(tx).Append(ctx, &m); err != nil {
			return err
		}
		rec.Qty -= qty
		out = StockReceipt{Message: "Stock issued.", Movement: m, Qty: rec.Qty}
		return nil
	})
	if err != nil {
		return StockReceipt{}, persistence("issue stock", err)
	}
	if rec.Low() {
		notifyLow(ctx, s.Alerts, rec, domain.MovementOut, out.Movement)
	}
	return out, nil
}

type MovementQuery struct {
	StoreID   int64
	ProductID int64
	Type      string
	Page      int
	PageSize  int
}

type MovementPage struct {
	TotalItems int               `json:"totalItems"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	Movements  []domain.Movement `json:"movements"`
}

// Movements pages through the audit log, newest first.
func (s *InventoryService) Movements(ctx context.Context, q MovementQuery) (MovementPage, error) {
	if q.Page <= 0 || q.PageSize <= 0 {
		return MovementPage{}, invalid(MsgInvalidPage)
	}
	t := domain.MovementType(q.Type)
	if t != "" && !t.Valid() {
		return MovementPage{}, invalid(MsgInvalidMovementType)
	}
	rows, total, err := s.Moves.List(ctx, repos.MovementFilter{
		StoreID:   q.StoreID,
		ProductID: q.ProductID,
		Type:      t,
		Limit:     q.PageSize,
		Offset:    (q.Page - 1) * q.PageSize,
	})
	if err != nil {
		return MovementPage{}, persistence("list movements", err)
	}
	return MovementPage{TotalItems: total, Page: q.Page, PageSize: q.PageSize, Movements: rows}, nil
}
