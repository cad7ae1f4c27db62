package intent

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"business-assistant/internal/common/textmatch"
)

// Rule maps trigger keywords of one locale to an intent.
type Rule struct {
	Intent   Intent   `yaml:"intent"`
	Locale   string   `yaml:"locale"`
	Keywords []string `yaml:"keywords"`
}

// DefaultRules is evaluated top to bottom. The dashboard rows must not list
// "overview": "sales overview" is a sales request. Keywords match whole
// words, optionally followed by a plural ending.
var DefaultRules = []Rule{
	{Intent: DashboardOverview, Locale: "en", Keywords: []string{"dashboard", "at a glance", "general status", "business status", "how is the business"}},
	{Intent: DashboardOverview, Locale: "es", Keywords: []string{"panel de control", "tablero", "resumen general", "estado del negocio", "cómo va el negocio"}},

	{Intent: CustomerManagement, Locale: "en", Keywords: []string{"customer", "client"}},
	{Intent: CustomerManagement, Locale: "es", Keywords: []string{"cliente"}},

	{Intent: SalesAnalysis, Locale: "en", Keywords: []string{"sales", "sale", "revenue", "selling", "sold"}},
	{Intent: SalesAnalysis, Locale: "es", Keywords: []string{"venta", "ingreso", "facturación", "vendido", "vendida"}},

	{Intent: InventoryManagement, Locale: "en", Keywords: []string{"inventory", "stock", "product", "warehouse"}},
	{Intent: InventoryManagement, Locale: "es", Keywords: []string{"inventario", "producto", "almacén", "existencias"}},

	{Intent: FinancialReport, Locale: "en", Keywords: []string{"financial", "finance", "expense", "profit", "cash flow", "balance"}},
	{Intent: FinancialReport, Locale: "es", Keywords: []string{"financiero", "finanzas", "gasto", "ganancia", "beneficio", "flujo de caja"}},

	{Intent: BusinessInsights, Locale: "en", Keywords: []string{"insight", "trend", "trending", "recommend", "recommendation", "analysis", "performance"}},
	{Intent: BusinessInsights, Locale: "es", Keywords: []string{"tendencia", "recomendación", "recomendaciones", "recomienda", "análisis", "rendimiento"}},

	{Intent: ReportGeneration, Locale: "en", Keywords: []string{"full report", "complete report", "generate report", "report"}},
	{Intent: ReportGeneration, Locale: "es", Keywords: []string{"informe", "reporte"}},
}

var pluralSuffixes = []string{"s", "es"}

type Classifier struct {
	rules []Rule
}

// NewClassifier copies rules, keeping only rows of the listed locales when
// any are given.
func NewClassifier(rules []Rule, locales ...string) *Classifier {
	allowed := make(map[string]bool, len(locales))
	for _, l := range locales {
		allowed[strings.ToLower(l)] = true
	}

	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if len(allowed) > 0 && !allowed[strings.ToLower(r.Locale)] {
			continue
		}
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kw = append(kw, k)
			}
		}
		kept = append(kept, Rule{Intent: r.Intent, Locale: r.Locale, Keywords: kw})
	}
	return &Classifier{rules: kept}
}

func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultRules)
}

// Classify returns the intent of the first rule with a keyword found as a
// whole word in text, or GeneralQuery.
func (c *Classifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		for _, k := range r.Keywords {
			if textmatch.Contains(lower, k, pluralSuffixes...) {
				return r.Intent
			}
		}
	}
	return GeneralQuery
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads an ordered rule table from a YAML file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read intent rules %s: %w", path, err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse intent rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("intent rules file defines no rules")
	}
	for i, r := range f.Rules {
		if !ValidIntent(r.Intent) {
			return nil, fmt.Errorf("rule %d: unknown intent %q", i, r.Intent)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no keywords", i, r.Intent)
		}
	}
	return f.Rules, nil
}
