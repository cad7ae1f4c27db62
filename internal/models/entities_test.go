package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_IsLowStock(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    bool
	}{
		{"at own reorder level", Product{Stock: 5, MinStock: 5}, true},
		{"above own reorder level", Product{Stock: 6, MinStock: 5}, false},
		{"unset level uses default", Product{Stock: 8}, true},
		{"unset level above default", Product{Stock: 11}, false},
		{"negative level uses default", Product{Stock: 10, MinStock: -1}, true},
		{"own level above default", Product{Stock: 40, MinStock: 50}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.product.IsLowStock())
		})
	}
}
