package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_DefaultRules(t *testing.T) {
	c := NewDefaultClassifier()

	tests := []struct {
		text string
		want Intent
	}{
		{"sales overview for this quarter", SalesAnalysis},
		{"Show me the DASHBOARD", DashboardOverview},
		{"how is the business doing?", DashboardOverview},
		{"list my top customers", CustomerManagement},
		{"which products are low on stock", InventoryManagement},
		{"profit and expenses last month", FinancialReport},
		{"any trends I should know about", BusinessInsights},
		{"generate report", ReportGeneration},
		{"hello there", GeneralQuery},
		{"", GeneralQuery},
		{"¿Cuántas ventas tuvimos este mes?", SalesAnalysis},
		{"muéstrame los clientes nuevos", CustomerManagement},
		{"informe completo", ReportGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassify_FirstRuleWins(t *testing.T) {
	c := NewDefaultClassifier()
	// customer rows come before sales rows
	assert.Equal(t, CustomerManagement, c.Classify("sales per customer"))
}

func TestClassify_KeywordsMatchWholeWords(t *testing.T) {
	c := NewDefaultClassifier()

	assert.Equal(t, InventoryManagement, c.Classify("how many solar panels are in stock"))
	assert.Equal(t, DashboardOverview, c.Classify("abre el panel de control"))
	assert.Equal(t, GeneralQuery, c.Classify("talk to the stockholders"))
	assert.Equal(t, BusinessInsights, c.Classify("any recommendations for next week?"))
	assert.Equal(t, FinancialReport, c.Classify("¿cuáles fueron los gastos?"))
}

func TestClassify_LocaleFilter(t *testing.T) {
	c := NewClassifier(DefaultRules, "en")
	assert.Equal(t, GeneralQuery, c.Classify("informe de ventas"))
	assert.Equal(t, SalesAnalysis, c.Classify("sales report"))
}

func TestCapabilitiesFor_FixedTable(t *testing.T) {
	want := []Capability{
		CapReportGeneration,
		CapDataAnalysis,
		CapCustomerInsights,
		CapSalesForecasting,
		CapInventoryOptimization,
		CapFinancialAnalysis,
	}
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(want, CapabilitiesFor(ReportGeneration)); diff != "" {
			t.Fatalf("report-generation capabilities (-want +got):\n%s", diff)
		}
	}

	assert.Equal(t, []Capability{CapSalesForecasting, CapDataAnalysis}, CapabilitiesFor(SalesAnalysis))
	assert.Equal(t, []Capability{CapDataAnalysis, CapReportGeneration, CapSalesForecasting}, CapabilitiesFor(BusinessInsights))
	assert.Empty(t, CapabilitiesFor(GeneralQuery))
	assert.Empty(t, CapabilitiesFor(Intent("unknown")))
}

func TestCapabilitiesFor_ReturnsCopy(t *testing.T) {
	caps := CapabilitiesFor(CustomerManagement)
	caps[0] = CapFinancialAnalysis

	assert.Equal(t, CapCustomerInsights, CapabilitiesFor(CustomerManagement)[0])
}

func TestLoadRules_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - intent: inventory-management
    locale: pt
    keywords: ["estoque", "produto"]
  - intent: sales-analysis
    locale: pt
    keywords: ["vendas"]
`), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	c := NewClassifier(rules)
	assert.Equal(t, InventoryManagement, c.Classify("Estoque de produto"))
	assert.Equal(t, SalesAnalysis, c.Classify("vendas do mês"))
	assert.Equal(t, GeneralQuery, c.Classify("sales"))
}

func TestParseRules_RejectsUnknownIntent(t *testing.T) {
	_, err := ParseRules([]byte(`
rules:
  - intent: world-domination
    keywords: ["all"]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "world-domination")
}

func TestParseRules_RejectsEmptyFile(t *testing.T) {
	_, err := ParseRules([]byte("rules: []"))
	assert.Error(t, err)
}

func TestLoadRules_ShippedFileMatchesDefaults(t *testing.T) {
	rules, err := LoadRules("../../configs/intent-rules.yaml")
	require.NoError(t, err)
	require.Len(t, rules, len(DefaultRules))

	for i, r := range rules {
		assert.Equal(t, DefaultRules[i].Intent, r.Intent, "rule %d", i)
		assert.Equal(t, DefaultRules[i].Keywords, r.Keywords, "rule %d", i)
	}
}
