package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    string          `db:"category" json:"category"`
	Description string          `db:"description" json:"description"`
	SKU         string          `db:"sku" json:"sku"`
}

type Store struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Location    string `db:"location" json:"location"`
	ManagerName string `db:"manager_name" json:"managerName"`
}

// InventoryRecord is the stock of one product in one store.
type InventoryRecord struct {
	ID        int64 `db:"id" json:"id"`
	StoreID   int64 `db:"store_id" json:"storeId"`
	ProductID int64 `db:"product_id" json:"productId"`
	Qty       int   `db:"qty" json:"qty"`
	MinStock  int   `db:"min_stock" json:"minStock"`
}

// Low reports whether the record is at or below its threshold.
func (r InventoryRecord) Low() bool { return r.Qty <= r.MinStock }

// InventoryView is an inventory record with its product and store joined in.
type InventoryView struct {
	InventoryRecord
	StoreName string  `json:"storeName"`
	Product   Product `json:"product"`
}

type MovementType string

const (
	MovementIn       MovementType = "IN"
	MovementOut      MovementType = "OUT"
	MovementTransfer MovementType = "TRANSFER"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementTransfer:
		return true
	}
	return false
}

// Movement is an append-only audit entry. SourceStoreID is nil for IN,
// TargetStoreID is nil for OUT.
type Movement struct {
	ID            int64        `db:"id" json:"id"`
	ProductID     int64        `db:"product_id" json:"productId"`
	SourceStoreID *int64       `db:"source_store_id" json:"sourceStoreId"`
	TargetStoreID *int64       `db:"target_store_id" json:"targetStoreId"`
	Qty           int          `db:"qty" json:"qty"`
	Timestamp     time.Time    `db:"ts" json:"timestamp"`
	Type          MovementType `db:"type" json:"type"`
	Reference     string       `db:"reference" json:"reference"`
}
