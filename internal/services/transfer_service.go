package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockhub/internal/domain"
	applog "stockhub/internal/log"
	"stockhub/internal/repos"
)

type TransferRequest struct {
	SourceStoreID      int64  `json:"sourceStoreId"`
	DestinationStoreID int64  `json:"destinationStoreId"`
	ProductID          int64  `json:"productId"`
	Quantity           int    `json:"quantity"`
	IdempotencyKey     string `json:"-"`
}

type TransferReceipt struct {
	Message        string          `json:"message"`
	Movement       domain.Movement `json:"movement"`
	SourceQty      int             `json:"sourceQty"`
	DestinationQty int             `json:"destinationQty"`
}

// TransferService moves stock of one product between two stores.
type TransferService struct {
	DB     *repos.DB
	Inv    *repos.InventoryRepo
	Stores *repos.StoreRepo
	Moves  *repos.MovementRepo

	// Guard is optional; without it idempotency keys are ignored.
	Guard  IdempotencyGuard
	Alerts AlertPublisher
	Now    func() time.Time
}

func NewTransferService(db *repos.DB, inv *repos.InventoryRepo, stores *repos.StoreRepo, moves *repos.MovementRepo) *TransferService {
	return &TransferService{DB: db, Inv: inv, Stores: stores, Moves: moves, Alerts: nopPublisher{}, Now: time.Now}
}

// Transfer debits the source record, credits (or creates) the destination
// record and appends a TRANSFER movement, all in one transaction.
func (s *TransferService) Transfer(ctx context.Context, req TransferRequest) (TransferReceipt, error) {
	if req.SourceStoreID <= 0 || req.DestinationStoreID <= 0 || req.ProductID <= 0 || req.Quantity <= 0 {
		return TransferReceipt{}, invalid(MsgInvalidTransfer)
	}
	if req.Quantity > MaxQuantity {
		return TransferReceipt{}, invalid(MsgQuantityTooLarge)
	}
	if req.SourceStoreID == req.DestinationStoreID {
		return TransferReceipt{}, invalid(MsgSameStore)
	}

	key := ""
	if req.IdempotencyKey != "" && s.Guard != nil {
		key = "transfer:" + req.IdempotencyKey
		ok, err := s.Guard.Reserve(ctx, key)
		if err != nil {
			return TransferReceipt{}, persistence("reserve idempotency key", err)
		}
		if !ok {
			return TransferReceipt{}, conflict(MsgDuplicateTransfer)
		}
	}

	receipt, src, err := s.apply(ctx, req)
	if err != nil {
		if key != "" {
			if rerr := s.Guard.Release(context.WithoutCancel(ctx), key); rerr != nil {
				applog.Warn(nil, "transfer.idempotency.release.fail", rerr, map[string]any{"key": key})
			}
		}
		return TransferReceipt{}, err
	}

	if src.Low() {
		notifyLow(ctx, s.Alerts, src, domain.MovementTransfer, receipt.Movement)
	}
	return receipt, nil
}

func (s *TransferService) apply(ctx context.Context, req TransferRequest) (TransferReceipt, domain.InventoryRecord, error) {
	var (
		out TransferReceipt
		src domain.InventoryRecord
	)
	err := s.DB.InTx(ctx, func(tx *sqlx.Tx) error {
		inv := s.Inv.WithTx(tx)

		rec, err := inv.GetForUpdate(ctx, req.SourceStoreID, req.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return insufficient(MsgInsufficientSource)
		}
		if err != nil {
			return err
		}
		if rec.Qty < req.Quantity {
			return insufficient(MsgInsufficientSource)
		}

		ok, err := s.Stores.WithTx(tx).Exists(ctx, req.DestinationStoreID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(MsgDestinationNotFound)
		}

		dest, err := inv.Get(ctx, req.DestinationStoreID, req.ProductID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if dest.Qty > MaxQuantity-req.Quantity {
			return invalid(MsgStockLimit)
		}

		// conditional debit, so a stale read can never overdraw the source
		if err := inv.Debit(ctx, req.SourceStoreID, req.ProductID, req.Quantity); err != nil {
			if errors.Is(err, repos.ErrShortStock) {
				return insufficient(MsgInsufficientSource)
			}
			return err
		}
		if err := inv.Credit(ctx, req.DestinationStoreID, req.ProductID, req.Quantity); err != nil {
			return err
		}

		srcID, dstID := req.SourceStoreID, req.DestinationStoreID
		m := domain.Movement{
			ProductID:     req.ProductID,
			SourceStoreID: &srcID,
			TargetStoreID: &dstID,
			Qty:           req.Quantity,
			Timestamp:     s.Now().UTC(),
			Type:          domain.MovementTransfer,
			Reference:     uuid.NewString(),
		}
		if err := s.Moves.WithTx(tx).Append(ctx, &m); err != nil {
			return err
		}

		dest, err = inv.Get(ctx, req.DestinationStoreID, req.ProductID)
		if err != nil {
			return err
		}
		rec.Qty -= req.Quantity
		src = rec
		out = TransferReceipt{
			Message:        MsgTransferOK,
			Movement:       m,
			SourceQty:      rec.Qty,
			DestinationQty: dest.Qty,
		}
		return nil
	})
	if err != nil {
		return TransferReceipt{}, domain.InventoryRecord{}, persistence("transfer", err)
	}
	return out, src, nil
}

// notifyLow publishes a low-stock alert. Failures are logged, never returned:
// the stock change is already committed.
func notifyLow(ctx context.Context, pub AlertPublisher, rec domain.InventoryRecord, cause domain.MovementType, m domain.Movement) {
	if pub == nil {
		pub = nopPublisher{}
	}
	a := StockAlert{
		StoreID:   rec.StoreID,
		ProductID: rec.ProductID,
		Qty:       rec.Qty,
		MinStock:  rec.MinStock,
		Cause:     cause,
		Reference: m.Reference,
		At:        m.Timestamp,
	}
	if err := pub.PublishLowStock(ctx, a); err != nil {
		applog.Warn(nil, "stock.low.publish.fail", err, map[string]any{
			"store_id": rec.StoreID, "product_id": rec.ProductID, "qty": rec.Qty,
		})
		return
	}
	applog.Info(nil, "stock.low", map[string]any{
		"store_id": rec.StoreID, "product_id": rec.ProductID, "qty": rec.Qty, "min_stock": rec.MinStock,
	})
}
