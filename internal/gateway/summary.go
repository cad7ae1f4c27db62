package gateway

import (
	"math"
	"sort"
	"time"

	"business-assistant/internal/models"
)

const (
	recentCustomerWindow = 30 * 24 * time.Hour
	dailyBreakdownLayout = "2006-01-02"
)

type customerPage struct {
	Customers []models.Customer `json:"customers"`
	Total     int               `json:"total"`
}

type productPage struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
}

type salesPage struct {
	Sales []models.Sale `json:"sales"`
}

type expensePage struct {
	Expenses   []models.Expense       `json:"expenses"`
	ByCategory []models.CategoryTotal `json:"byCategory"`
}

type PaymentMethodTotal struct {
	Method  string  `json:"method"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func customerSummary(p customerPage, now time.Time) map[string]interface{} {
	recent := 0
	byCompany := map[string]int{}
	for _, c := range p.Customers {
		if !c.CreatedAt.IsZero() && now.Sub(c.CreatedAt) <= recentCustomerWindow {
			recent++
		}
		if c.Company != "" {
			byCompany[c.Company]++
		}
	}
	return map[string]interface{}{
		"total":           p.Total,
		"returned":        len(p.Customers),
		"recentCustomers": recent,
		"byCompany":       byCompany,
	}
}

func productSummary(p productPage) map[string]interface{} {
	lowStock := 0
	value := 0.0
	categories := map[string]int{}
	for _, prod := range p.Products {
		if prod.IsLowStock() {
			lowStock++
		}
		value += prod.Price * float64(prod.Stock)
		if prod.Category != "" {
			categories[prod.Category]++
		}
	}
	return map[string]interface{}{
		"totalProducts":  p.Total,
		"lowStockCount":  lowStock,
		"inventoryValue": round2(value),
		"categories":     categories,
	}
}

type salesStats struct {
	Count          int
	Revenue        float64
	Average        float64
	Daily          map[string]float64
	PaymentMethods []PaymentMethodTotal
}

func computeSalesStats(p salesPage) salesStats {
	st := salesStats{Daily: map[string]float64{}}
	byMethod := map[string]*PaymentMethodTotal{}

	for _, s := range p.Sales {
		st.Count++
		st.Revenue += s.Total
		day := s.Date.Format(dailyBreakdownLayout)
		st.Daily[day] = round2(st.Daily[day] + s.Total)

		method := s.PaymentMethod
		if method == "" {
			method = "unknown"
		}
		m, ok := byMethod[method]
		if !ok {
			m = &PaymentMethodTotal{Method: method}
			byMethod[method] = m
		}
		m.Revenue += s.Total
		m.Count++
	}

	st.PaymentMethods = make([]PaymentMethodTotal, 0, len(byMethod))
	for _, m := range byMethod {
		m.Revenue = round2(m.Revenue)
		st.PaymentMethods = append(st.PaymentMethods, *m)
	}
	sort.Slice(st.PaymentMethods, func(i, j int) bool {
		a, b := st.PaymentMethods[i], st.PaymentMethods[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Method < b.Method
	})

	st.Revenue = round2(st.Revenue)
	if st.Count > 0 {
		st.Average = round2(st.Revenue / float64(st.Count))
	}
	return st
}

func salesSummary(st salesStats, rr resolvedRange) map[string]interface{} {
	return map[string]interface{}{
		"totalSales":        st.Count,
		"totalRevenue":      st.Revenue,
		"averageOrderValue": st.Average,
		"dailyBreakdown":    st.Daily,
		"paymentMethods":    st.PaymentMethods,
		"period":            rr.Period,
		"startDate":         rr.Range.Start.Format(dailyBreakdownLayout),
		"endDate":           rr.Range.End.Format(dailyBreakdownLayout),
	}
}

func expenseSummary(p expensePage) map[string]interface{} {
	total := 0.0
	count := 0
	byCategory := map[string]float64{}
	for _, ct := range p.ByCategory {
		total += ct.Total
		count += ct.Count
		byCategory[ct.Category] = round2(ct.Total)
	}
	return map[string]interface{}{
		"totalExpenses": round2(total),
		"count":         count,
		"byCategory":    byCategory,
	}
}

// profitability is computed only when both sides were requested.
func profitability(salesTotal, expenseTotal float64) map[string]interface{} {
	gross := round2(salesTotal - expenseTotal)
	margin := 0.0
	if salesTotal > 0 {
		margin = round2(gross / salesTotal * 100)
	}
	return map[string]interface{}{
		"grossProfit":  gross,
		"profitMargin": margin,
	}
}
