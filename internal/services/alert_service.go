package services

import (
	"context"

	"stockhub/internal/domain"
	"stockhub/internal/repos"
)

type AlertService struct {
	Inv *repos.InventoryRepo
}

func NewAlertService(inv *repos.InventoryRepo) *AlertService {
	return &AlertService{Inv: inv}
}

// ListLowStock returns every record with qty <= minStock, product joined in,
// ordered by store then product.
func (s *AlertService) ListLowStock(ctx context.Context) ([]domain.InventoryView, error) {
	rows, err := s.Inv.ListLow(ctx)
	if err != nil {
		return nil, persistence("list low stock", err)
	}
	return rows, nil
}
