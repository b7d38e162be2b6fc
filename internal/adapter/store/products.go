package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lokit-s/A2A-protocol/internal/domain"
)

// ProductStore owns the products table.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore runs the schema migration and returns the store.
func NewProductStore(db *sql.DB) (*ProductStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			description TEXT,
			price       REAL NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("migrate products: %w", err)
	}
	return &ProductStore{db: db}, nil
}

// Add inserts a product and returns the stored row.
func (s *ProductStore) Add(ctx context.Context, name string, price float64, description string) (*domain.Product, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO products (name, description, price, created_at) VALUES (?, ?, ?, ?)",
		name, nullable(description), price, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert product id: %w", err)
	}
	return &domain.Product{ID: id, Name: name, Description: description, Price: price, CreatedAt: now}, nil
}

// List returns all products ordered by ascending id.
func (s *ProductStore) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, price, created_at FROM products ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// Get returns the product with the given id, or domain.ErrNotFound.
func (s *ProductStore) Get(ctx context.Context, id int64) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, price, created_at FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return p, err
}

// Update changes only the supplied (non-nil) fields. Returns
// domain.ErrNothingToUpdate when no field is supplied and
// domain.ErrNotFound when no row matches.
func (s *ProductStore) Update(ctx context.Context, id int64, name *string, price *float64, description *string) error {
	var sets []string
	var args []any
	if name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *name)
	}
	if price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *price)
	}
	if description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *description)
	}
	if len(sets) == 0 {
		return domain.ErrNothingToUpdate
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the product, or returns domain.ErrNotFound.
func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row scanner) (*domain.Product, error) {
	var p domain.Product
	var description sql.NullString
	var createdStr string
	if err := row.Scan(&p.ID, &p.Name, &description, &p.Price, &createdStr); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.CreatedAt = parseTime(createdStr)
	return &p, nil
}
