package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stockhub/internal/repos"
	"stockhub/internal/services"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fakePublisher struct {
	mu     sync.Mutex
	alerts []services.StockAlert
	fail   bool
}

func (p *fakePublisher) PublishLowStock(_ context.Context, a services.StockAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.alerts = append(p.alerts, a)
	return nil
}

func (p *fakePublisher) sent() []services.StockAlert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]services.StockAlert(nil), p.alerts...)
}

type fakeGuard struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (g *fakeGuard) Reserve(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys == nil {
		g.keys = map[string]bool{}
	}
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}

type env struct {
	db        *repos.DB
	invRepo   *repos.InventoryRepo
	moves     *repos.MovementRepo
	transfers *services.TransferService
	inv       *services.InventoryService
	alerts    *services.AlertService
	catalog   *services.CatalogService
	pub       *fakePublisher
}

// newEnv returns services over an empty in-memory database.
func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	prodRepo := repos.NewProductRepo(db)
	storeRepo := repos.NewStoreRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	moveRepo := repos.NewMovementRepo(db)

	clk := &clock{t: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	pub := &fakePublisher{}

	tr := services.NewTransferService(db, invRepo, storeRepo, moveRepo)
	tr.Alerts, tr.Now = pub, clk.Now
	inv := services.NewInventoryService(db, invRepo, storeRepo, prodRepo, moveRepo)
	inv.Alerts, inv.Now = pub, clk.Now

	return &env{
		db:        db,
		invRepo:   invRepo,
		moves:     moveRepo,
		transfers: tr,
		inv:       inv,
		alerts:    services.NewAlertService(invRepo),
		catalog:   services.NewCatalogService(db, prodRepo, storeRepo),
		pub:       pub,
	}
}

func (e *env) store(t *testing.T, name string) int64 {
	t.Helper()
	s, err := e.catalog.CreateStore(context.Background(), services.StoreInput{Name: name})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return s.ID
}

func (e *env) product(t *testing.T, sku string) int64 {
	t.Helper()
	p, err := e.catalog.CreateProduct(context.Background(), services.ProductInput{
		Name: "Product " + sku, Price: decimal.RequireFromString("2.50"), Category: "Test", SKU: sku,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p.ID
}

// stock gives (store, product) a record with qty and minStock, booked as a receipt.
func (e *env) stock(t *testing.T, storeID, productID int64, qty, minStock int) {
	t.Helper()
	ctx := context.Background()
	if qty > 0 {
		if _, err := e.inv.Receive(ctx, storeID, productID, qty); err != nil {
			t.Fatalf("receive: %v", err)
		}
	} else if err := e.invRepo.Credit(ctx, storeID, productID, 0); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := e.inv.SetMinStock(ctx, storeID, productID, minStock); err != nil {
		t.Fatalf("set min stock: %v", err)
	}
}

// qty returns the record's quantity, ok=false when there is no record.
func (e *env) qty(t *testing.T, storeID, productID int64) (int, bool) {
	t.Helper()
	rec, err := e.invRepo.Get(context.Background(), storeID, productID)
	if err != nil {
		return 0, false
	}
	return rec.Qty, true
}

func (e *env) minStock(t *testing.T, storeID, productID int64) int {
	t.Helper()
	rec, err := e.invRepo.Get(context.Background(), storeID, productID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	return rec.MinStock
}

func (e *env) movementCount(t *testing.T) int {
	t.Helper()
	_, total, err := e.moves.List(context.Background(), repos.MovementFilter{})
	if err != nil {
		t.Fatal(err)
	}
	return total
}

// assertConserved checks that every record equals IN + received transfers
// minus OUT and sent transfers.
func (e *env) assertConserved(t *testing.T) {
	t.Helper()
	var bad int
	err := e.db.Get(&bad, `
		SELECT COUNT(*) FROM inventory i
		WHERE i.qty != (
		  SELECT COALESCE(SUM(CASE WHEN m.target_store_id = i.store_id THEN m.qty ELSE -m.qty END), 0)
		  FROM movements m
		  WHERE m.product_id = i.product_id
		    AND (m.target_store_id = i.store_id OR m.source_store_id = i.store_id))`)
	if err != nil {
		t.Fatal(err)
	}
	if bad != 0 {
		t.Fatalf("%d inventory records disagree with the movement log", bad)
	}
}
