// internal/models/entities.go
package models

import "time"

type Entity string

const (
	EntityCustomers Entity = "customers"
	EntityProducts  Entity = "products"
	EntitySales     Entity = "sales"
	EntityExpenses  Entity = "expenses"
)

// AllEntities lists every entity with its own snapshot blob.
var AllEntities = []Entity{EntityCustomers, EntityProducts, EntitySales, EntityExpenses}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	MinStock int     `json:"minStock"`
}

// DefaultMinStock is the reorder level of products that set none.
const DefaultMinStock = 10

func (p Product) ReorderLevel() int {
	if p.MinStock <= 0 {
		return DefaultMinStock
	}
	return p.MinStock
}

// IsLowStock is the single low-stock rule shared by every store and summary.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.ReorderLevel()
}

type Sale struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customerId,omitempty"`
	ProductID     string    `json:"productId,omitempty"`
	Quantity      int       `json:"quantity"`
	Total         float64   `json:"total"`
	PaymentMethod string    `json:"paymentMethod"`
	Date          time.Time `json:"date"`
}

type Expense struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
}

// CategoryTotal is one row of an aggregate-by-group query.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}
