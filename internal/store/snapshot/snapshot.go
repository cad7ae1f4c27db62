// Package snapshot serves the static fallback dataset: one JSON array per
// entity, read once from a directory and never modified.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "business-assistant/internal/common/errors"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/models"
	"business-assistant/internal/store"
)

// Data is the in-memory dataset. A nil slice means the blob was absent.
type Data struct {
	Customers []models.Customer
	Products  []models.Product
	Sales     []models.Sale
	Expenses  []models.Expense
}

type Store struct {
	data    Data
	present map[models.Entity]bool
}

var _ store.PrimaryStore = (*Store)(nil)

// Load reads <entity>.json from dir. Missing files are skipped; unreadable or
// malformed files fail the load.
func Load(dir string, log logger.Logger) (*Store, error) {
	log = logger.Component(log, "snapshot")

	s := &Store{present: make(map[models.Entity]bool)}
	targets := map[models.Entity]interface{}{
		models.EntityCustomers: &s.data.Customers,
		models.EntityProducts:  &s.data.Products,
		models.EntitySales:     &s.data.Sales,
		models.EntityExpenses:  &s.data.Expenses,
	}

	for _, entity := range models.AllEntities {
		path := filepath.Join(dir, string(entity)+".json")
		raw, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			log.Warn("snapshot blob missing", map[string]interface{}{"entity": string(entity), "path": path})
			continue
		}
		if err != nil {
			return nil, apperrors.NewSnapshotLoadFailedError(path, err)
		}
		if err := json.Unmarshal(raw, targets[entity]); err != nil {
			return nil, apperrors.NewSnapshotLoadFailedError(path, err)
		}
		s.present[entity] = true
	}

	s.sort()
	log.Info("snapshot loaded", map[string]interface{}{
		"dir":       dir,
		"customers": len(s.data.Customers),
		"products":  len(s.data.Products),
		"sales":     len(s.data.Sales),
		"expenses":  len(s.data.Expenses),
	})
	return s, nil
}

// FromData builds a store from in-memory records; nil slices count as absent.
func FromData(d Data) *Store {
	s := &Store{
		data: Data{
			Customers: append([]models.Customer(nil), d.Customers...),
			Products:  append([]models.Product(nil), d.Products...),
			Sales:     append([]models.Sale(nil), d.Sales...),
			Expenses:  append([]models.Expense(nil), d.Expenses...),
		},
		present: map[models.Entity]bool{
			models.EntityCustomers: d.Customers != nil,
			models.EntityProducts:  d.Products != nil,
			models.EntitySales:     d.Sales != nil,
			models.EntityExpenses:  d.Expenses != nil,
		},
	}
	s.sort()
	return s
}

// Empty is a snapshot with no blobs.
func Empty() *Store {
	return FromData(Data{})
}

func (s *Store) Has(entity models.Entity) bool {
	return s.present[entity]
}

func (s *Store) sort() {
	sort.SliceStable(s.data.Customers, func(i, j int) bool {
		return s.data.Customers[i].CreatedAt.After(s.data.Customers[j].CreatedAt)
	})
	sort.SliceStable(s.data.Products, func(i, j int) bool {
		return s.data.Products[i].Name < s.data.Products[j].Name
	})
	sort.SliceStable(s.data.Sales, func(i, j int) bool {
		return s.data.Sales[i].Date.Before(s.data.Sales[j].Date)
	})
	sort.SliceStable(s.data.Expenses, func(i, j int) bool {
		return s.data.Expenses[i].Date.Before(s.data.Expenses[j].Date)
	})
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matchCustomer(c models.Customer, f store.CustomerFilter) bool {
	return containsFold(c.Name, f.Name) && containsFold(c.Email, f.Email) && containsFold(c.Company, f.Company)
}

func matchProduct(p models.Product, f store.ProductFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.LowStock && !p.IsLowStock() {
		return false
	}
	return true
}

func (s *Store) FindCustomers(_ context.Context, filter store.CustomerFilter, limit int) ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range s.data.Customers {
		if limit > 0 && len(out) >= limit {
			break
		}
		if matchCustomer(c, filter) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CountCustomers(_ context.Context, filter store.CustomerFilter) (int, error) {
	n := 0
	for _, c := range s.data.Customers {
		if matchCustomer(c, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) FindProducts(_ context.Context, filter store.ProductFilter, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.data.Products {
		if limit > 0 && len(out) >= limit {
			break
		}
		if matchProduct(p, filter) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) CountProducts(_ context.Context, filter store.ProductFilter) (int, error) {
	n := 0
	for _, p := range s.data.Products {
		if matchProduct(p, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) FindSales(_ context.Context, r store.DateRange) ([]models.Sale, error) {
	var out []models.Sale
	for _, sale := range s.data.Sales {
		if r.Contains(sale.Date) {
			out = append(out, sale)
		}
	}
	return out, nil
}

func (s *Store) FindExpenses(_ context.Context, r store.DateRange) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range s.data.Expenses {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) AggregateExpenses(ctx context.Context, r store.DateRange) ([]models.CategoryTotal, error) {
	expenses, _ := s.FindExpenses(ctx, r)

	index := map[string]int{}
	var out []models.CategoryTotal
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, models.CategoryTotal{Category: e.Category})
		}
		out[i].Total += e.Amount
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *Store) String() string {
	return fmt.Sprintf("snapshot(customers=%d products=%d sales=%d expenses=%d)",
		len(s.data.Customers), len(s.data.Products), len(s.data.Sales), len(s.data.Expenses))
}
