package services

import (
	"context"
	"time"

	"stockhub/internal/domain"
)

// IdempotencyGuard remembers request keys for a while.
type IdempotencyGuard interface {
	// Reserve claims key, returns false if it is already claimed.
	Reserve(ctx context.Context, key string) (bool, error)
	// Release forgets key so the request may be retried.
	Release(ctx context.Context, key string) error
}

// StockAlert is published when a debit leaves a record at or below its threshold.
type StockAlert struct {
	StoreID   int64               `json:"storeId"`
	ProductID int64               `json:"productId"`
	Qty       int                 `json:"qty"`
	MinStock  int                 `json:"minStock"`
	Cause     domain.MovementType `json:"cause"`
	Reference string              `json:"reference"`
	At        time.Time           `json:"at"`
}

type AlertPublisher interface {
	PublishLowStock(ctx context.Context, a StockAlert) error
}

type nopPublisher struct{}

func (nopPublisher) PublishLowStock(context.Context, StockAlert) error { return nil }
