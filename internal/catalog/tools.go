package catalog

import "business-assistant/internal/common/validation"

// DatePattern accepts YYYY-MM-DD or an RFC3339 timestamp.
const DatePattern = `^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2}))?$`

var periods = []string{"day", "week", "month", "quarter", "year"}

func float(v float64) *float64 { return &v }

func closed() *bool {
	f := false
	return &f
}

func dateProperty(desc string) validation.Property {
	return validation.Property{Type: "string", Description: desc, Pattern: DatePattern}
}

func periodProperty() validation.Property {
	return validation.Property{
		Type:        "string",
		Description: "Aggregation period",
		Enum:        periods,
		Default:     "month",
	}
}

func limitProperty(desc string) validation.Property {
	return validation.Property{
		Type:        "integer",
		Description: desc,
		Minimum:     float(1),
		Maximum:     float(100),
		Default:     10,
	}
}

func flag(desc string) validation.Property {
	return validation.Property{Type: "boolean", Description: desc, Default: true}
}

func defaultTools() []ToolDescriptor {
	return []ToolDescriptor{
		{
			Name:        ToolQueryCustomers,
			Description: "List and search customers with optional name, email or company filters",
			InputSchema: validation.JSONSchema{
				Type: "object",
				Properties: map[string]validation.Property{
					"limit": limitProperty("Maximum number of customers to return"),
					"filter": {
						Type:        "object",
						Description: "Case-insensitive substring filters",
						Properties: map[string]validation.Property{
							"name":    {Type: "string"},
							"email":   {Type: "string"},
							"company": {Type: "string"},
						},
						AdditionalProperties: closed(),
					},
				},
			},
		},
		{
			Name:        ToolAnalyzeSales,
			Description: "Aggregate sales for a period or an explicit date range",
			InputSchema: validation.JSONSchema{
				Type: "object",
				Properties: map[string]validation.Property{
					"period":    periodProperty(),
					"startDate": dateProperty("Inclusive start date"),
					"endDate":   dateProperty("Inclusive end date"),
				},
			},
		},
		{
			Name:        ToolQueryProducts,
			Description: "List products and inventory levels",
			InputSchema: validation.JSONSchema{
				Type: "object",
				Properties: map[string]validation.Property{
					"limit":    limitProperty("Maximum number of products to return"),
					"category": {Type: "string", Description: "Exact category name"},
					"lowStock": {Type: "boolean", Description: "Only products at or below their minimum stock"},
				},
			},
		},
		{
			Name:        ToolGenerateFinancialReport,
			Description: "Revenue, expense and profitability rollup for a period",
			InputSchema: validation.JSONSchema{
				Type: "object",
				Properties: map[string]validation.Property{
					"period":          periodProperty(),
					"includeExpenses": flag("Include the expense breakdown"),
					"includeSales":    flag("Include the sales totals"),
					"startDate":       dateProperty("Inclusive start date"),
					"endDate":         dateProperty("Inclusive end date"),
				},
			},
		},
		{
			Name:        ToolGetBusinessOverview,
			Description: "Composite overview of customers, sales, inventory and finances",
			InputSchema: validation.JSONSchema{
				Type: "object",
				Properties: map[string]validation.Property{
					"includeCustomers": flag("Include customer metrics"),
					"includeSales":     flag("Include sales metrics"),
					"includeInventory": flag("Include inventory metrics"),
					"includeFinances":  flag("Include financial metrics"),
					"period":           periodProperty(),
					"startDate":        dateProperty("Inclusive start date"),
					"endDate":          dateProperty("Inclusive end date"),
				},
			},
		},
	}
}

func defaultResources() []ResourceDescriptor {
	return []ResourceDescriptor{
		{
			URI:         ResourceCustomers,
			Name:        "Customers",
			Description: "Customer records",
			MimeType:    MimeTypeJSON,
			Tool:        ToolQueryCustomers,
			Arguments:   map[string]interface{}{"limit": 100},
		},
		{
			URI:         ResourceProducts,
			Name:        "Products",
			Description: "Product catalog and inventory",
			MimeType:    MimeTypeJSON,
			Tool:        ToolQueryProducts,
			Arguments:   map[string]interface{}{"limit": 100},
		},
		{
			URI:         ResourceSales,
			Name:        "Sales",
			Description: "Sales for the current month",
			MimeType:    MimeTypeJSON,
			Tool:        ToolAnalyzeSales,
			Arguments:   map[string]interface{}{"period": "month"},
		},
		{
			URI:         ResourceFinances,
			Name:        "Finances",
			Description: "Financial report for the current month",
			MimeType:    MimeTypeJSON,
			Tool:        ToolGenerateFinancialReport,
			Arguments:   map[string]interface{}{"period": "month"},
		},
	}
}
