package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lokit-s/A2A-protocol/internal/domain"
)

// SalesStore owns the sales table. Rows snapshot the customer/product name
// and unit price at write time; customer_id and product_id are plain
// integers with no foreign key, matching the loose coupling between agents.
type SalesStore struct {
	db *sql.DB
}

// NewSalesStore runs the schema migration and returns the store.
func NewSalesStore(db *sql.DB) (*SalesStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sales (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id   INTEGER NOT NULL,
			customer_name TEXT NOT NULL,
			product_id    INTEGER NOT NULL,
			product_name  TEXT NOT NULL,
			quantity      INTEGER NOT NULL,
			price         REAL NOT NULL DEFAULT 0,
			total_price   REAL NOT NULL DEFAULT 0,
			sale_time     TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("migrate sales: %w", err)
	}
	return &SalesStore{db: db}, nil
}

// Insert writes a fully resolved sale row, assigning id and sale_time.
// The passed sale is updated in place with both.
func (s *SalesStore) Insert(ctx context.Context, sale *domain.Sale) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sales (customer_id, customer_name, product_id, product_name, quantity, price, total_price, sale_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.CustomerID, sale.CustomerName, sale.ProductID, sale.ProductName,
		sale.Quantity, sale.Price, sale.TotalPrice, formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert sale id: %w", err)
	}
	sale.ID = id
	sale.SaleTime = now
	return nil
}

// List returns all sales ordered by ascending id.
func (s *SalesStore) List(ctx context.Context) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, customer_name, product_id, product_name, quantity, price, total_price, sale_time
		 FROM sales ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

// Get returns the sale with the given id, or domain.ErrNotFound.
func (s *SalesStore) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, customer_id, customer_name, product_id, product_name, quantity, price, total_price, sale_time
		 FROM sales WHERE id = ?`, id)
	sale, err := scanSale(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return sale, err
}

// Update rewrites every mutable column of the sale row. The caller has
// already re-resolved names and recomputed the total; sale_time is not
// touched. Returns domain.ErrNotFound when no row matches.
func (s *SalesStore) Update(ctx context.Context, sale *domain.Sale) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sales
		 SET customer_id = ?, customer_name = ?, product_id = ?, product_name = ?,
		     quantity = ?, price = ?, total_price = ?
		 WHERE id = ?`,
		sale.CustomerID, sale.CustomerName, sale.ProductID, sale.ProductName,
		sale.Quantity, sale.Price, sale.TotalPrice, sale.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the sale, or returns domain.ErrNotFound.
func (s *SalesStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sales WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSale(row scanner) (*domain.Sale, error) {
	var sale domain.Sale
	var saleTimeStr string
	if err := row.Scan(&sale.ID, &sale.CustomerID, &sale.CustomerName,
		&sale.ProductID, &sale.ProductName, &sale.Quantity,
		&sale.Price, &sale.TotalPrice, &saleTimeStr); err != nil {
		return nil, err
	}
	sale.SaleTime = parseTime(saleTimeStr)
	return &sale, nil
}
