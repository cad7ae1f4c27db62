package search

import (
	"strings"
	"time"

	"business-assistant/internal/models"
	"business-assistant/internal/store"
)

func matchAll() map[string]interface{} {
	return map[string]interface{}{"match_all": map[string]interface{}{}}
}

func boolFilter(clauses []interface{}) map[string]interface{} {
	if len(clauses) == 0 {
		return matchAll()
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{"filter": clauses},
	}
}

// contains is the search equivalent of ILIKE '%v%'.
func contains(field, value string) map[string]interface{} {
	escaped := strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`).Replace(value)
	return map[string]interface{}{
		"wildcard": map[string]interface{}{
			field: map[string]interface{}{
				"value":            "*" + escaped + "*",
				"case_insensitive": true,
			},
		},
	}
}

func customerQuery(f store.CustomerFilter) map[string]interface{} {
	var clauses []interface{}
	if f.Name != "" {
		clauses = append(clauses, contains("name", f.Name))
	}
	if f.Email != "" {
		clauses = append(clauses, contains("email", f.Email))
	}
	if f.Company != "" {
		clauses = append(clauses, contains("company", f.Company))
	}
	return boolFilter(clauses)
}

// lowStockScript mirrors models.Product.IsLowStock.
const lowStockScript = "long min = doc['minStock'].size() == 0 || doc['minStock'].value <= 0 ? params.defaultMinStock : doc['minStock'].value; " +
	"return doc['stock'].value <= min;"

func productQuery(f store.ProductFilter) map[string]interface{} {
	var clauses []interface{}
	if f.Category != "" {
		clauses = append(clauses, map[string]interface{}{
			"term": map[string]interface{}{"category": f.Category},
		})
	}
	if f.LowStock {
		clauses = append(clauses, map[string]interface{}{
			"script": map[string]interface{}{
				"script": map[string]interface{}{
					"source": lowStockScript,
					"params": map[string]interface{}{"defaultMinStock": models.DefaultMinStock},
				},
			},
		})
	}
	return boolFilter(clauses)
}

func rangeQuery(field string, r store.DateRange) map[string]interface{} {
	bounds := map[string]interface{}{}
	if !r.Start.IsZero() {
		bounds["gte"] = r.Start.Format(time.RFC3339Nano)
	}
	if !r.End.IsZero() {
		bounds["lte"] = r.End.Format(time.RFC3339Nano)
	}
	if len(bounds) == 0 {
		return matchAll()
	}
	return boolFilter([]interface{}{
		map[string]interface{}{"range": map[string]interface{}{field: bounds}},
	})
}
