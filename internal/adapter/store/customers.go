package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lokit-s/A2A-protocol/internal/domain"
)

// CustomerStore owns the customers table.
type CustomerStore struct {
	db *sql.DB
}

// NewCustomerStore runs the schema migration and returns the store.
func NewCustomerStore(db *sql.DB) (*CustomerStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS customers (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			email      TEXT,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("migrate customers: %w", err)
	}
	return &CustomerStore{db: db}, nil
}

// Add inserts a customer and returns the stored row.
func (s *CustomerStore) Add(ctx context.Context, name, email string) (*domain.Customer, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO customers (name, email, created_at) VALUES (?, ?, ?)",
		name, nullable(email), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert customer id: %w", err)
	}
	return &domain.Customer{ID: id, Name: name, Email: email, CreatedAt: now}, nil
}

// List returns all customers ordered by ascending id.
func (s *CustomerStore) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, created_at FROM customers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// Get returns the customer with the given id, or domain.ErrNotFound.
func (s *CustomerStore) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, created_at FROM customers WHERE id = ?", id)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// Update changes only the supplied (non-nil) fields. Returns
// domain.ErrNothingToUpdate before touching the database when no field is
// supplied, and domain.ErrNotFound when no row matches.
func (s *CustomerStore) Update(ctx context.Context, id int64, name, email *string) error {
	var sets []string
	var args []any
	if name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *name)
	}
	if email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *email)
	}
	if len(sets) == 0 {
		return domain.ErrNothingToUpdate
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE customers SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the customer, or returns domain.ErrNotFound.
func (s *CustomerStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row scanner) (*domain.Customer, error) {
	var c domain.Customer
	var email sql.NullString
	var createdStr string
	if err := row.Scan(&c.ID, &c.Name, &email, &createdStr); err != nil {
		return nil, err
	}
	c.Email = email.String
	c.CreatedAt = parseTime(createdStr)
	return &c, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
