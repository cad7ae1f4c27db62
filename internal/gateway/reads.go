package gateway

import (
	"context"

	"golang.org/x/sync/errgroup"

	"business-assistant/internal/models"
	"business-assistant/internal/store"
)

func (g *Gateway) fetchCustomers(ctx context.Context, q CustomerQuery) (readResult[customerPage], error) {
	q.Limit = normalizeLimit(q.Limit)
	key := cacheKey(string(models.EntityCustomers), q)
	return readThrough(ctx, g, string(models.EntityCustomers), key,
		func(ctx context.Context, st store.PrimaryStore) (customerPage, error) {
			customers, err := st.FindCustomers(ctx, q.Filter, q.Limit)
			if err != nil {
				return customerPage{}, err
			}
			total, err := st.CountCustomers(ctx, q.Filter)
			if err != nil {
				return customerPage{}, err
			}
			return customerPage{Customers: customers, Total: total}, nil
		})
}

func (g *Gateway) fetchProducts(ctx context.Context, q ProductQuery) (readResult[productPage], error) {
	q.Limit = normalizeLimit(q.Limit)
	filter := store.ProductFilter{Category: q.Category, LowStock: q.LowStock}
	key := cacheKey(string(models.EntityProducts), q)
	return readThrough(ctx, g, string(models.EntityProducts), key,
		func(ctx context.Context, st store.PrimaryStore) (productPage, error) {
			products, err := st.FindProducts(ctx, filter, q.Limit)
			if err != nil {
				return productPage{}, err
			}
			total, err := st.CountProducts(ctx, filter)
			if err != nil {
				return productPage{}, err
			}
			return productPage{Products: products, Total: total}, nil
		})
}

func (g *Gateway) fetchSales(ctx context.Context, rr resolvedRange) (readResult[salesPage], error) {
	key := cacheKey(string(models.EntitySales), rr.Range)
	return readThrough(ctx, g, string(models.EntitySales), key,
		func(ctx context.Context, st store.PrimaryStore) (salesPage, error) {
			sales, err := st.FindSales(ctx, rr.Range)
			if err != nil {
				return salesPage{}, err
			}
			return salesPage{Sales: sales}, nil
		})
}

func (g *Gateway) fetchExpenses(ctx context.Context, rr resolvedRange) (readResult[expensePage], error) {
	key := cacheKey(string(models.EntityExpenses), rr.Range)
	return readThrough(ctx, g, string(models.EntityExpenses), key,
		func(ctx context.Context, st store.PrimaryStore) (expensePage, error) {
			expenses, err := st.FindExpenses(ctx, rr.Range)
			if err != nil {
				return expensePage{}, err
			}
			grouped, err := st.AggregateExpenses(ctx, rr.Range)
			if err != nil {
				return expensePage{}, err
			}
			return expensePage{Expenses: expenses, ByCategory: grouped}, nil
		})
}

// Customers lists customers matching the filter.
func (g *Gateway) Customers(ctx context.Context, q CustomerQuery) (models.DataAnswer, error) {
	res, err := g.fetchCustomers(ctx, q)
	if err != nil {
		return models.DataAnswer{}, err
	}
	customers := res.value.Customers
	if customers == nil {
		customers = []models.Customer{}
	}
	return models.DataAnswer{
		Payload: customers,
		Source:  res.source,
		Total:   models.IntPtr(res.value.Total),
		Summary: customerSummary(res.value, g.now()),
		Cached:  res.cached,
	}, nil
}

func (g *Gateway) Products(ctx context.Context, q ProductQuery) (models.DataAnswer, error) {
	res, err := g.fetchProducts(ctx, q)
	if err != nil {
		return models.DataAnswer{}, err
	}
	products := res.value.Products
	if products == nil {
		products = []models.Product{}
	}
	return models.DataAnswer{
		Payload: products,
		Source:  res.source,
		Total:   models.IntPtr(res.value.Total),
		Summary: productSummary(res.value),
		Cached:  res.cached,
	}, nil
}

func (g *Gateway) Sales(ctx context.Context, q SalesQuery) (models.DataAnswer, error) {
	rr, err := resolveRange(q.PeriodQuery, g.now())
	if err != nil {
		return models.DataAnswer{}, err
	}
	res, err := g.fetchSales(ctx, rr)
	if err != nil {
		return models.DataAnswer{}, err
	}
	sales := res.value.Sales
	if sales == nil {
		sales = []models.Sale{}
	}
	return models.DataAnswer{
		Payload: sales,
		Source:  res.source,
		Total:   models.IntPtr(len(sales)),
		Summary: salesSummary(computeSalesStats(res.value), rr),
		Cached:  res.cached,
	}, nil
}

func (g *Gateway) Expenses(ctx context.Context, q ExpenseQuery) (models.DataAnswer, error) {
	rr, err := resolveRange(q.PeriodQuery, g.now())
	if err != nil {
		return models.DataAnswer{}, err
	}
	res, err := g.fetchExpenses(ctx, rr)
	if err != nil {
		return models.DataAnswer{}, err
	}
	expenses := res.value.Expenses
	if expenses == nil {
		expenses = []models.Expense{}
	}
	return models.DataAnswer{
		Payload: expenses,
		Source:  res.source,
		Total:   models.IntPtr(len(expenses)),
		Summary: expenseSummary(res.value),
		Cached:  res.cached,
	}, nil
}

// FinancialReport rolls up sales and expenses for the window. Each side falls
// back independently.
func (g *Gateway) FinancialReport(ctx context.Context, q FinancialQuery) (models.DataAnswer, error) {
	rr, err := resolveRange(q.PeriodQuery, g.now())
	if err != nil {
		return models.DataAnswer{}, err
	}

	var (
		salesRes   readResult[salesPage]
		expenseRes readResult[expensePage]
	)
	eg, egCtx := errgroup.WithContext(ctx)
	if q.IncludeSales {
		eg.Go(func() error {
			var err error
			salesRes, err = g.fetchSales(egCtx, rr)
			return err
		})
	}
	if q.IncludeExpenses {
		eg.Go(func() error {
			var err error
			expenseRes, err = g.fetchExpenses(egCtx, rr)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return models.DataAnswer{}, err
	}

	report := map[string]interface{}{
		"period":    rr.Period,
		"startDate": rr.Range.Start.Format(dailyBreakdownLayout),
		"endDate":   rr.Range.End.Format(dailyBreakdownLayout),
	}
	sources := map[string]interface{}{}
	source := models.SourcePrimary
	summary := map[string]interface{}{"sources": sources}

	var salesTotal, expenseTotal float64
	if q.IncludeSales {
		st := computeSalesStats(salesRes.value)
		salesTotal = st.Revenue
		report["sales"] = map[string]interface{}{
			"totalRevenue":      st.Revenue,
			"totalSales":        st.Count,
			"averageOrderValue": st.Average,
			"paymentMethods":    st.PaymentMethods,
		}
		sources["sales"] = salesRes.source
		source = worse(source, salesRes.source)
	}
	if q.IncludeExpenses {
		es := expenseSummary(expenseRes.value)
		expenseTotal = es["totalExpenses"].(float64)
		report["expenses"] = es
		sources["expenses"] = expenseRes.source
		source = worse(source, expenseRes.source)
	}
	if q.IncludeSales && q.IncludeExpenses {
		p := profitability(salesTotal, expenseTotal)
		report["profitability"] = p
		summary["profitability"] = p
	}

	return models.DataAnswer{
		Payload: report,
		Source:  source,
		Summary: summary,
	}, nil
}

// Overview is the composite of the included sections. Sections are read
// concurrently and each declares its own source.
func (g *Gateway) Overview(ctx context.Context, q OverviewQuery) (models.DataAnswer, error) {
	rr, err := resolveRange(q.PeriodQuery, g.now())
	if err != nil {
		return models.DataAnswer{}, err
	}

	var (
		customersRes readResult[customerPage]
		productsRes  readResult[productPage]
		salesRes     readResult[salesPage]
		expenseRes   readResult[expensePage]
	)
	eg, egCtx := errgroup.WithContext(ctx)
	if q.IncludeCustomers {
		eg.Go(func() error {
			var err error
			customersRes, err = g.fetchCustomers(egCtx, CustomerQuery{Limit: overviewLimit})
			return err
		})
	}
	if q.IncludeInventory {
		eg.Go(func() error {
			var err error
			productsRes, err = g.fetchProducts(egCtx, ProductQuery{Limit: overviewLimit})
			return err
		})
	}
	if q.IncludeSales || q.IncludeFinances {
		eg.Go(func() error {
			var err error
			salesRes, err = g.fetchSales(egCtx, rr)
			return err
		})
	}
	if q.IncludeFinances {
		eg.Go(func() error {
			var err error
			expenseRes, err = g.fetchExpenses(egCtx, rr)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return models.DataAnswer{}, err
	}

	overview := map[string]interface{}{
		"period":    rr.Period,
		"startDate": rr.Range.Start.Format(dailyBreakdownLayout),
		"endDate":   rr.Range.End.Format(dailyBreakdownLayout),
	}
	sources := map[string]interface{}{}
	source := models.SourcePrimary

	if q.IncludeCustomers {
		overview["customers"] = customerSummary(customersRes.value, g.now())
		sources["customers"] = customersRes.source
		source = worse(source, customersRes.source)
	}
	if q.IncludeInventory {
		overview["inventory"] = productSummary(productsRes.value)
		sources["inventory"] = productsRes.source
		source = worse(source, productsRes.source)
	}
	st := computeSalesStats(salesRes.value)
	if q.IncludeSales {
		overview["sales"] = map[string]interface{}{
			"totalSales":        st.Count,
			"totalRevenue":      st.Revenue,
			"averageOrderValue": st.Average,
		}
		sources["sales"] = salesRes.source
		source = worse(source, salesRes.source)
	}
	if q.IncludeFinances {
		es := expenseSummary(expenseRes.value)
		overview["finances"] = map[string]interface{}{
			"revenue":       st.Revenue,
			"expenses":      es["totalExpenses"],
			"profitability": profitability(st.Revenue, es["totalExpenses"].(float64)),
		}
		sources["finances"] = worse(salesRes.source, expenseRes.source)
		source = worse(source, worse(salesRes.source, expenseRes.source))
	}

	return models.DataAnswer{
		Payload: overview,
		Source:  source,
		Summary: map[string]interface{}{"sources": sources},
	}, nil
}
