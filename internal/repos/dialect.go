package repos

import "fmt"

// Dialect holds the SQL that differs between the supported engines.
type Dialect struct {
	Name   string
	Driver string
	Schema []string

	// SingleWriter engines get a one-connection pool.
	SingleWriter bool
	// LockSuffix is appended to SELECTs that read a row about to be updated.
	LockSuffix string
	// UpsertCredit inserts (store_id, product_id, qty) or adds qty to the
	// existing row. Arguments: store_id, product_id, qty.
	UpsertCredit string
}

var sqliteDialect = Dialect{
	Name:         "sqlite",
	Driver:       "sqlite",
	SingleWriter: true,
	UpsertCredit: `
		INSERT INTO inventory(store_id, product_id, qty, min_stock)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(store_id, product_id) DO UPDATE SET qty = inventory.qty + excluded.qty`,
	Schema: []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS products(
		  id INTEGER PRIMARY KEY AUTOINCREMENT,
		  name TEXT NOT NULL CHECK (length(name) BETWEEN 1 AND 100),
		  price NUMERIC NOT NULL CHECK (price > 0),
		  category TEXT NOT NULL,
		  description TEXT NOT NULL DEFAULT '',
		  sku TEXT NOT NULL CHECK (length(sku) <= 50)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
		`CREATE TABLE IF NOT EXISTS stores(
		  id INTEGER PRIMARY KEY AUTOINCREMENT,
		  name TEXT NOT NULL,
		  location TEXT NOT NULL DEFAULT '',
		  manager_name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS inventory(
		  id INTEGER PRIMARY KEY AUTOINCREMENT,
		  store_id INTEGER NOT NULL REFERENCES stores(id) ON DELETE RESTRICT,
		  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
		  qty INTEGER NOT NULL DEFAULT 0 CHECK (qty >= 0),
		  min_stock INTEGER NOT NULL DEFAULT 0 CHECK (min_stock >= 0),
		  UNIQUE(store_id, product_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_product ON inventory(product_id)`,
		`CREATE TABLE IF NOT EXISTS movements(
		  id INTEGER PRIMARY KEY AUTOINCREMENT,
		  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
		  source_store_id INTEGER NULL REFERENCES stores(id) ON DELETE RESTRICT,
		  target_store_id INTEGER NULL REFERENCES stores(id) ON DELETE RESTRICT,
		  qty INTEGER NOT NULL CHECK (qty > 0),
		  ts DATETIME NOT NULL,
		  type TEXT NOT NULL CHECK (type IN ('IN','OUT','TRANSFER')),
		  reference TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_movements_product ON movements(product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_movements_ts ON movements(ts)`,
	},
}

var mysqlDialect = Dialect{
	Name:       "mysql",
	Driver:     "mysql",
	LockSuffix: " FOR UPDATE",
	UpsertCredit: `
		INSERT INTO inventory(store_id, product_id, qty, min_stock)
		VALUES (?, ?, ?, 0)
		ON DUPLICATE KEY UPDATE qty = qty + VALUES(qty)`,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS products(
		  id BIGINT AUTO_INCREMENT PRIMARY KEY,
		  name VARCHAR(100) NOT NULL,
		  price DECIMAL(12,2) NOT NULL,
		  category VARCHAR(100) NOT NULL,
		  description TEXT NOT NULL,
		  sku VARCHAR(50) NOT NULL,
		  INDEX idx_products_category (category),
		  CHECK (price > 0)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS stores(
		  id BIGINT AUTO_INCREMENT PRIMARY KEY,
		  name VARCHAR(100) NOT NULL,
		  location VARCHAR(255) NOT NULL DEFAULT '',
		  manager_name VARCHAR(100) NOT NULL DEFAULT ''
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS inventory(
		  id BIGINT AUTO_INCREMENT PRIMARY KEY,
		  store_id BIGINT NOT NULL,
		  product_id BIGINT NOT NULL,
		  qty INT NOT NULL DEFAULT 0 CHECK (qty >= 0),
		  min_stock INT NOT NULL DEFAULT 0,
		  UNIQUE KEY uq_inventory_pair (store_id, product_id),
		  INDEX idx_inventory_product (product_id),
		  CONSTRAINT fk_inventory_store FOREIGN KEY (store_id) REFERENCES stores(id) ON DELETE RESTRICT,
		  CONSTRAINT fk_inventory_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT,
		  CHECK (min_stock >= 0)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS movements(
		  id BIGINT AUTO_INCREMENT PRIMARY KEY,
		  product_id BIGINT NOT NULL,
		  source_store_id BIGINT NULL,
		  target_store_id BIGINT NULL,
		  qty INT NOT NULL,
		  ts DATETIME(6) NOT NULL,
		  type VARCHAR(16) NOT NULL,
		  reference VARCHAR(64) NOT NULL DEFAULT '',
		  INDEX idx_movements_product (product_id),
		  INDEX idx_movements_ts (ts),
		  CONSTRAINT fk_movements_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT,
		  CONSTRAINT fk_movements_source FOREIGN KEY (source_store_id) REFERENCES stores(id) ON DELETE RESTRICT,
		  CONSTRAINT fk_movements_target FOREIGN KEY (target_store_id) REFERENCES stores(id) ON DELETE RESTRICT,
		  CHECK (qty > 0),
		  CHECK (type IN ('IN','OUT','TRANSFER'))
		) ENGINE=InnoDB`,
	},
}

func dialectFor(driver string) (Dialect, error) {
	switch driver {
	case "", "sqlite":
		return sqliteDialect, nil
	case "mysql":
		return mysqlDialect, nil
	}
	return Dialect{}, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}
