// Package intent classifies free-text requests and resolves the data-access
// capabilities each intent needs.
package intent

type Intent string

const (
	DashboardOverview   Intent = "dashboard-overview"
	CustomerManagement  Intent = "customer-management"
	SalesAnalysis       Intent = "sales-analysis"
	InventoryManagement Intent = "inventory-management"
	FinancialReport     Intent = "financial-report"
	BusinessInsights    Intent = "business-insights"
	ReportGeneration    Intent = "report-generation"
	GeneralQuery        Intent = "general-query"
)

type Capability string

const (
	CapDataAnalysis          Capability = "data-analysis"
	CapReportGeneration      Capability = "report-generation"
	CapCustomerInsights      Capability = "customer-insights"
	CapSalesForecasting      Capability = "sales-forecasting"
	CapInventoryOptimization Capability = "inventory-optimization"
	CapFinancialAnalysis     Capability = "financial-analysis"
)

var capabilityTable = map[Intent][]Capability{
	DashboardOverview:   {CapDataAnalysis, CapReportGeneration},
	CustomerManagement:  {CapCustomerInsights, CapDataAnalysis},
	SalesAnalysis:       {CapSalesForecasting, CapDataAnalysis},
	InventoryManagement: {CapInventoryOptimization, CapDataAnalysis},
	FinancialReport:     {CapFinancialAnalysis, CapReportGeneration},
	BusinessInsights:    {CapDataAnalysis, CapReportGeneration, CapSalesForecasting},
	ReportGeneration: {
		CapReportGeneration,
		CapDataAnalysis,
		CapCustomerInsights,
		CapSalesForecasting,
		CapInventoryOptimization,
		CapFinancialAnalysis,
	},
	GeneralQuery: {},
}

// CapabilitiesFor returns a fresh copy of the intent's ordered capability
// list; unknown intents need nothing.
func CapabilitiesFor(i Intent) []Capability {
	caps := capabilityTable[i]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

func ValidIntent(i Intent) bool {
	_, ok := capabilityTable[i]
	return ok
}

func ValidCapability(c Capability) bool {
	switch c {
	case CapDataAnalysis, CapReportGeneration, CapCustomerInsights,
		CapSalesForecasting, CapInventoryOptimization, CapFinancialAnalysis:
		return true
	}
	return false
}
