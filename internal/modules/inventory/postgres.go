package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Schema creates the three inventory tables. References between them are
// plain columns without foreign keys: products may point at deleted
// suppliers and transactions at deleted products.
const Schema = `
CREATE TABLE IF NOT EXISTS suppliers (
  id             BIGSERIAL PRIMARY KEY,
  name           TEXT    NOT NULL,
  contact        TEXT    NOT NULL DEFAULT '',
  email          TEXT    NOT NULL DEFAULT '',
  phone          TEXT    NOT NULL DEFAULT '',
  address        TEXT    NOT NULL DEFAULT '',
  lead_time_days INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS products (
  id            BIGSERIAL PRIMARY KEY,
  name          TEXT          NOT NULL,
  category      TEXT          NOT NULL DEFAULT '',
  quantity      INTEGER       NOT NULL,
  price         NUMERIC(12,2) NOT NULL,
  reorder_level INTEGER       NOT NULL,
  supplier_id   BIGINT        NOT NULL,
  created_at    TIMESTAMPTZ   NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
  id         BIGSERIAL PRIMARY KEY,
  product_id BIGINT        NOT NULL,
  type       TEXT          NOT NULL CHECK (type IN ('sale','purchase')),
  quantity   INTEGER       NOT NULL CHECK (quantity > 0),
  amount     NUMERIC(12,2) NOT NULL,
  date       TIMESTAMPTZ   NOT NULL,
  notes      TEXT          NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS transactions_product_id_idx ON transactions (product_id);`

type postgresRepository struct{ db *sql.DB }

// NewPostgresRepository returns a durable backing on top of db (lib/pq).
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

// EnsureSchema applies Schema; it is safe to run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply inventory schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const productColumns = `id,name,category,quantity,price,reorder_level,supplier_id,created_at`

func scanProduct(row rowScanner) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.Price,
		&p.ReorderLevel, &p.SupplierID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

const supplierColumns = `id,name,contact,email,phone,address,lead_time_days`

func scanSupplier(row rowScanner) (*Supplier, error) {
	s := &Supplier{}
	err := row.Scan(&s.ID, &s.Name, &s.Contact, &s.Email, &s.Phone, &s.Address, &s.LeadTimeDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ---- Product ----

func (r *postgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	return r.db.QueryRowContext(ctx, `
INSERT INTO products (name,category,quantity,price,reorder_level,supplier_id,created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		p.Name, p.Category, p.Quantity, p.Price, p.ReorderLevel, p.SupplierID, p.CreatedAt).
		Scan(&p.ID)
}

func (r *postgresRepository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

func (r *postgresRepository) ListProducts(ctx context.Context) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepository) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, `
UPDATE products SET
  name          = COALESCE($2, name),
  category      = COALESCE($3, category),
  quantity      = COALESCE($4, quantity),
  price         = COALESCE($5::numeric, price),
  reorder_level = COALESCE($6, reorder_level),
  supplier_id   = COALESCE($7, supplier_id)
WHERE id=$1 RETURNING `+productColumns,
		id, patch.Name, patch.Category, patch.Quantity, patch.Price, patch.ReorderLevel, patch.SupplierID))
}

func (r *postgresRepository) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ---- Supplier ----

func (r *postgresRepository) CreateSupplier(ctx context.Context, s *Supplier) error {
	return r.db.QueryRowContext(ctx, `
INSERT INTO suppliers (name,contact,email,phone,address,lead_time_days)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		s.Name, s.Contact, s.Email, s.Phone, s.Address, s.LeadTimeDays).
		Scan(&s.ID)
}

func (r *postgresRepository) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	return scanSupplier(r.db.QueryRowContext(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE id=$1`, id))
}

func (r *postgresRepository) ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	suppliers := []*Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *postgresRepository) UpdateSupplier(ctx context.Context, id int64, patch SupplierPatch) (*Supplier, error) {
	return scanSupplier(r.db.QueryRowContext(ctx, `
UPDATE suppliers SET
  name           = COALESCE($2, name),
  contact        = COALESCE($3, contact),
  email          = COALESCE($4, email),
  phone          = COALESCE($5, phone),
  address        = COALESCE($6, address),
  lead_time_days = COALESCE($7, lead_time_days)
WHERE id=$1 RETURNING `+supplierColumns,
		id, patch.Name, patch.Contact, patch.Email, patch.Phone, patch.Address, patch.LeadTimeDays))
}

func (r *postgresRepository) DeleteSupplier(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ---- Transaction ----

// CreateTransaction inserts the row and adjusts the product inside one
// database transaction; the UPDATE row lock serializes concurrent effects
// on the same product.
func (r *postgresRepository) CreateTransaction(ctx context.Context, t *Transaction) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
INSERT INTO transactions (product_id,type,quantity,amount,date,notes)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		t.ProductID, string(t.Type), t.Quantity, t.Amount, t.Date, t.Notes).
		Scan(&t.ID)
	if err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE products SET quantity = quantity + $1 WHERE id=$2`,
		stockDelta(t.Type, t.Quantity), t.ProductID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *postgresRepository) ListTransactions(ctx context.Context) ([]*Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,product_id,type,quantity,amount,date,notes FROM transactions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	transactions := []*Transaction{}
	for rows.Next() {
		t := &Transaction{}
		var typ string
		if err := rows.Scan(&t.ID, &t.ProductID, &typ, &t.Quantity, &t.Amount, &t.Date, &t.Notes); err != nil {
			return nil, err
		}
		t.Type = TransactionType(typ)
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
