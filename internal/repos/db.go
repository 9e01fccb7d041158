package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB is the shared handle every repo is built from.
type DB struct {
	*sqlx.DB
	Dialect Dialect
}

// OpenDB connects, pings and ensures the schema exists. driver is "sqlite" or
// "mysql"; MySQL DSNs need parseTime=true.
func OpenDB(driver, dsn string) (*DB, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(d.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if d.SingleWriter {
		// one connection serializes write transactions and keeps :memory: databases alive
		db.SetMaxOpenConns(1)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	out := &DB{DB: db, Dialect: d}
	if err := out.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return out, nil
}

func (db *DB) ensureSchema() error {
	for _, stmt := range db.Dialect.Schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InTx runs fn inside a transaction, committing on nil and rolling back otherwise.
func (db *DB) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Seed inserts demo stores, products and stock when the catalog is empty.
// Safe to run on every startup.
func (db *DB) Seed(ctx context.Context) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo stores/products/inventory")

	return db.InTx(ctx, func(tx *sqlx.Tx) error {
		stmts := []string{
			`INSERT INTO stores(id,name,location,manager_name) VALUES
			  (1,'Downtown','12 Main St','Ana Ruiz'),
			  (2,'Harbor','3 Pier Rd','Tom Okafor'),
			  (3,'Airport','Terminal B','Lena Park')`,
			`INSERT INTO products(id,name,price,category,description,sku) VALUES
			  (1,'Espresso Beans 1kg',24.90,'Coffee','Dark roast whole beans','COF-ESP-1K'),
			  (2,'Oat Milk 1L',3.40,'Dairy Alternatives','Barista edition','MLK-OAT-1L'),
			  (3,'Paper Cups 12oz',0.12,'Supplies','Compostable, sleeve of 50','SUP-CUP-12')`,
			`INSERT INTO inventory(store_id,product_id,qty,min_stock) VALUES
			  (1,1,40,10),
			  (1,2,6,12),
			  (2,1,8,10),
			  (2,3,500,200),
			  (3,2,30,5)`,
		}
		for _, s := range stmts {
			if _, err := tx.ExecContext(ctx, s); err != nil {
				return err
			}
		}
		// opening balances are IN movements so quantities stay the net of the log
		_, err := tx.ExecContext(ctx, `
			INSERT INTO movements(product_id, source_store_id, target_store_id, qty, ts, type, reference)
			SELECT product_id, NULL, store_id, qty, ?, 'IN', 'seed' FROM inventory`,
			time.Now().UTC())
		return err
	})
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
