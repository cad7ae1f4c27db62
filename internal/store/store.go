// Package store defines the entity-scoped read operations the gateway needs
// from a live business store.
package store

import (
	"context"
	"time"

	"business-assistant/internal/models"
)

type CustomerFilter struct {
	Name    string `mapstructure:"name"`
	Email   string `mapstructure:"email"`
	Company string `mapstructure:"company"`
}

type ProductFilter struct {
	Category string
	LowStock bool
}

// DateRange is inclusive on both ends. A zero bound is open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// PrimaryStore is the live data source. Implementations must honour ctx
// cancellation; the gateway treats any returned error as unavailability.
type PrimaryStore interface {
	FindCustomers(ctx context.Context, filter CustomerFilter, limit int) ([]models.Customer, error)
	CountCustomers(ctx context.Context, filter CustomerFilter) (int, error)
	FindProducts(ctx context.Context, filter ProductFilter, limit int) ([]models.Product, error)
	CountProducts(ctx context.Context, filter ProductFilter) (int, error)
	FindSales(ctx context.Context, r DateRange) ([]models.Sale, error)
	FindExpenses(ctx context.Context, r DateRange) ([]models.Expense, error)
	AggregateExpenses(ctx context.Context, r DateRange) ([]models.CategoryTotal, error)
}
