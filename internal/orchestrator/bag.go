package orchestrator

import (
	"time"

	"business-assistant/internal/models"
)

// Bag keys, fixed by capability rather than by arrival order.
const (
	KeyCustomers = "customers"
	KeySales     = "sales"
	KeyInventory = "inventory"
	KeyFinances  = "finances"
	KeyOverview  = "overview"
)

type ErrorRecord struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Failure is one call that produced no answer.
type Failure struct {
	Key       string    `json:"key"`
	Tool      string    `json:"tool"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// BusinessDataBag is the result of one collection pass. A nil slot means the
// capability was not requested or its call failed; Failures tells which.
type BusinessDataBag struct {
	Customers *models.DataAnswer `json:"customers,omitempty"`
	Sales     *models.DataAnswer `json:"sales,omitempty"`
	Inventory *models.DataAnswer `json:"inventory,omitempty"`
	Finances  *models.DataAnswer `json:"finances,omitempty"`
	Overview  *models.DataAnswer `json:"overview,omitempty"`

	Error    *ErrorRecord `json:"error,omitempty"`
	Failures []Failure    `json:"failures,omitempty"`
}

func (b *BusinessDataBag) slot(key string) **models.DataAnswer {
	switch key {
	case KeyCustomers:
		return &b.Customers
	case KeySales:
		return &b.Sales
	case KeyInventory:
		return &b.Inventory
	case KeyFinances:
		return &b.Finances
	case KeyOverview:
		return &b.Overview
	}
	return nil
}

// Get returns the answer stored under key, or nil.
func (b *BusinessDataBag) Get(key string) *models.DataAnswer {
	if s := b.slot(key); s != nil {
		return *s
	}
	return nil
}

// Keys lists the populated slots in bag order.
func (b *BusinessDataBag) Keys() []string {
	var keys []string
	for _, k := range []string{KeyCustomers, KeySales, KeyInventory, KeyFinances, KeyOverview} {
		if b.Get(k) != nil {
			keys = append(keys, k)
		}
	}
	return keys
}

func (b *BusinessDataBag) Empty() bool {
	return len(b.Keys()) == 0
}

// Degraded reports whether any answer came from the fallback snapshot.
func (b *BusinessDataBag) Degraded() bool {
	for _, k := range b.Keys() {
		if b.Get(k).IsDegraded() {
			return true
		}
	}
	return false
}
