// Package postgres implements a PostgreSQL-backed order repository,
// used as the durable archive behind the in-memory working set.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"posflow/pkg/order"
	"posflow/pkg/sequence"
)

// Schema is the table the repository expects.
const Schema = `CREATE TABLE IF NOT EXISTS orders (
	id          TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL,
	order_date  TIMESTAMPTZ NOT NULL,
	lines       JSONB NOT NULL,
	notes       TEXT,
	status      TEXT NOT NULL,
	total       NUMERIC NOT NULL
)`

// Repository persists orders in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository. The caller must ensure the orders
// table exists; see Schema.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Add assigns the next O-prefixed identifier and inserts the order. The
// identifier scan and the insert run in one transaction so two concurrent
// placements cannot claim the same identifier.
func (r *Repository) Add(ctx context.Context, o order.Order) (order.Order, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return order.Order{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "SELECT id FROM orders")
	if err != nil {
		return order.Order{}, fmt.Errorf("scan ids: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return order.Order{}, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return order.Order{}, err
	}
	o.ID = sequence.Next("O", ids)

	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return order.Order{}, fmt.Errorf("marshal lines: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO orders (id, customer_id, order_date, lines, notes, status, total) VALUES ($1,$2,$3,$4,$5,$6,$7)",
		o.ID, o.CustomerID, o.Date, lines, o.Notes, o.Status, o.Total)
	if err != nil {
		return order.Order{}, fmt.Errorf("insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return order.Order{}, fmt.Errorf("commit: %w", err)
	}
	return o, nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (order.Order, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, customer_id, order_date, lines, notes, status, total FROM orders WHERE id=$1", id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return order.Order{}, order.ErrNotFound
	}
	return o, err
}

// List fetches all orders in placement order.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, customer_id, order_date, lines, notes, status, total FROM orders ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (order.Order, error) {
	var o order.Order
	var lines []byte
	var notes sql.NullString
	if err := s.Scan(&o.ID, &o.CustomerID, &o.Date, &lines, &notes, &o.Status, &o.Total); err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return order.Order{}, fmt.Errorf("unmarshal lines: %w", err)
	}
	o.Notes = notes.String
	return o, nil
}
