package handlers

import (
	"stockhub/internal/config"
	"stockhub/internal/repos"
	"stockhub/internal/services"
)

type Deps struct {
	Transfers *services.TransferService
	Alerts    *services.AlertService
	Inventory *services.InventoryService
	Catalog   *services.CatalogService

	InventoryHandler *InventoryHandler
	ProductHandler   *ProductHandler
	StoreHandler     *StoreHandler
}

// NewDeps wires repositories and services. guard and pub may be nil.
func NewDeps(db *repos.DB, cfg config.Config, guard services.IdempotencyGuard, pub services.AlertPublisher) *Deps {
	prodRepo := repos.NewProductRepo(db)
	storeRepo := repos.NewStoreRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	moveRepo := repos.NewMovementRepo(db)

	transferSvc := services.NewTransferService(db, invRepo, storeRepo, moveRepo)
	invSvc := services.NewInventoryService(db, invRepo, storeRepo, prodRepo, moveRepo)
	if guard != nil {
		transferSvc.Guard = guard
	}
	if pub != nil {
		transferSvc.Alerts = pub
		invSvc.Alerts = pub
	}
	alertSvc := services.NewAlertService(invRepo)
	catalogSvc := services.NewCatalogService(db, prodRepo, storeRepo)

	return &Deps{
		Transfers: transferSvc,
		Alerts:    alertSvc,
		Inventory: invSvc,
		Catalog:   catalogSvc,

		InventoryHandler: &InventoryHandler{Transfers: transferSvc, Alerts: alertSvc, Inv: invSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		StoreHandler:     &StoreHandler{Catalog: catalogSvc},
	}
}
