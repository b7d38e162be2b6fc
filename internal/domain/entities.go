package domain

import "time"

// Customer is a row in the customers table, owned exclusively by the
// customer agent.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a row in the products table, owned exclusively by the
// product agent.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

// Sale is a row in the sales table. CustomerName, ProductName and Price are
// snapshots taken at sale (or update) time, not live references: renaming a
// customer or repricing a product later does not change historical sales.
type Sale struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	ProductID    int64     `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Quantity     int64     `json:"quantity"`
	Price        float64   `json:"price"`
	TotalPrice   float64   `json:"total_price"`
	SaleTime     time.Time `json:"sale_time"`
}
